package config

import (
	"chordfs.io/errors"
	"chordfs.io/keys"
)

// GetKey reads a named key (e.g. keys.Kf) from the "Keys" section,
// unwrapping it under encKey if one is supplied. It returns (nil, nil)
// if the key is not configured.
func GetKey(p Provider, name string, encKey []byte) ([]byte, error) {
	const op = "config.GetKey"
	encoded := p.String("Keys:"+name, "")
	if encoded == "" {
		return nil, nil
	}
	raw, err := keys.Decode(encoded)
	if err != nil {
		return nil, errors.E(op, name, err)
	}
	key, err := keys.Unwrap(raw, encKey)
	if err != nil {
		return nil, errors.E(op, name, err)
	}
	return key, nil
}

// SetKey stores a named key under the "Keys" section, wrapping it
// under encKey if one is supplied.
func SetKey(p Provider, name string, key, encKey []byte) error {
	const op = "config.SetKey"
	if len(key) == 0 {
		return nil
	}
	wrapped, err := keys.Wrap(key, encKey)
	if err != nil {
		return errors.E(op, name, err)
	}
	p.Set("Keys:"+name, keys.Encode(wrapped))
	return nil
}
