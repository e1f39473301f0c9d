// Package config supplies the section-qualified key/value store every
// other package treats as its one external collaborator: a ring node
// reads its identifier and known peers from it, the file engine reads
// block sizing and keys from it. The on-disk format is YAML, loaded
// with gopkg.in/yaml.v2 the way config/initconfig.go loads its client
// configuration in this module's ancestry; the section:property
// addressing scheme itself follows the ConfigParser-based Config
// class this module's behavior is modeled on.
package config

import (
	"io/ioutil"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v2"

	"chordfs.io/errors"
)

// Provider is the read/write key-value contract every component
// depends on, injected at construction time rather than reached for
// through a package-level global.
type Provider interface {
	// String returns the value of section:property, or def if unset.
	String(key, def string) string
	// Int returns the value of section:property parsed as an integer, or def.
	Int(key string, def int) int
	// Bool returns the value of section:property parsed as a boolean, or def.
	Bool(key string, def bool) bool
	// Set assigns section:property = value.
	Set(key, value string)
}

// File is a Provider backed by a two-level YAML document:
// section -> property -> value, all values stored as strings.
type File struct {
	sections map[string]map[string]string
}

var _ Provider = (*File)(nil)

// New returns an empty File provider.
func New() *File {
	return &File{sections: make(map[string]map[string]string)}
}

// Load reads a YAML document from path into a new File provider.
func Load(path string) (*File, error) {
	const op = "config.Load"
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.E(op, path, errors.IO, err)
	}
	f := New()
	if err := yaml.Unmarshal(data, &f.sections); err != nil {
		return nil, errors.E(op, path, errors.Invalid, err)
	}
	if f.sections == nil {
		f.sections = make(map[string]map[string]string)
	}
	return f, nil
}

// Save writes the provider's contents to path as YAML.
func (f *File) Save(path string) error {
	const op = "config.Save"
	data, err := yaml.Marshal(f.sections)
	if err != nil {
		return errors.E(op, errors.Internal, err)
	}
	if err := ioutil.WriteFile(path, data, 0600); err != nil {
		return errors.E(op, path, errors.IO, err)
	}
	return nil
}

// splitKey divides "section:property" into its parts; a key with no
// colon lives in the "Main" section.
func splitKey(key string) (section, property string) {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "Main", key
}

func (f *File) String(key, def string) string {
	section, property := splitKey(key)
	if bucket, ok := f.sections[section]; ok {
		if v, ok := bucket[property]; ok {
			return v
		}
	}
	return def
}

func (f *File) Int(key string, def int) int {
	s := f.String(key, "")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func (f *File) Bool(key string, def bool) bool {
	s := strings.ToLower(f.String(key, ""))
	if s == "" {
		return def
	}
	return s != "false" && s != "0"
}

func (f *File) Set(key, value string) {
	section, property := splitKey(key)
	bucket, ok := f.sections[section]
	if !ok {
		bucket = make(map[string]string)
		f.sections[section] = bucket
	}
	bucket[property] = value
}
