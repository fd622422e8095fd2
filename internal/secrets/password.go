package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"jobalert-exporter/internal/config"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the exporter's secrets in the OS keychain.
	KeyringService = "jobalert-exporter"

	// PasswordEnv is consulted when the keychain has nothing.
	PasswordEnv = "JOBALERT_IMAP_PASSWORD"
)

var ErrPasswordNotFound = errors.New("IMAP password not found (set it in keychain or via " + PasswordEnv + ")")

func GetIMAPPassword(keyringAccount string) (string, error) {
	// 1) Keyring first (recommended)
	if strings.TrimSpace(keyringAccount) != "" {
		pw, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}

	// 2) Environment, including anything loaded from .env
	if pw := os.Getenv(PasswordEnv); strings.TrimSpace(pw) != "" {
		return pw, nil
	}

	return "", ErrPasswordNotFound
}

func SetIMAPPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeleteIMAPPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

func IMAPKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf(
		"jobalert:imap:%s@%s",
		cfg.Email.Username,
		cfg.Email.IMAPHost,
	)
}
