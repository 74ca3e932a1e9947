package config

import (
	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"
)

// KeyringService is the OS keyring service holding profile tokens.
const KeyringService = "rawhttp"

var ErrNoToken = errors.New("no token stored")

func StoreToken(profile, token string) error {
	if err := keyring.Set(KeyringService, profile, token); err != nil {
		return errors.Wrap(err, "storing token")
	}
	return nil
}

func LoadToken(profile string) (string, error) {
	token, err := keyring.Get(KeyringService, profile)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", errors.Wrap(ErrNoToken, profile)
		}
		return "", errors.Wrap(err, "reading token")
	}
	return token, nil
}

func DeleteToken(profile string) error {
	if err := keyring.Delete(KeyringService, profile); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.Wrap(ErrNoToken, profile)
		}
		return errors.Wrap(err, "deleting token")
	}
	return nil
}

// ResolveToken returns the token a profile carries. An inline token wins
// over the keyring.
func (p Profile) ResolveToken(name string) (string, error) {
	if p.Token != "" || !p.Keyring {
		return p.Token, nil
	}
	return LoadToken(name)
}
