package file

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"chordfs.io/errors"
)

// Tunable layout constants. BlockSize is the width, in bytes, of
// every ciphertext part (and every descriptor block) a file is split
// into; DescPerMetapart bounds how many part entries one descriptor
// block carries before it must chain to another block via the "n"
// field.
const (
	DefaultBlockSize       = 1024
	DefaultDescPerMetapart = 12
)

// descriptor is one link in a file's metadata chain. UID, Nick,
// Length, and Hash are only meaningful on the first link, the one
// stored at the file's own Hd; every link carries up to
// DescPerMetapart part-URI entries (Parts reports how many of them
// this particular link holds) and, if the chain continues, Next.
type descriptor struct {
	UID      string
	Nick     string
	Parts    int    // part entries carried by this link (not the chain total)
	Length   int64  // total plaintext length (first link only)
	Hash     string // hex SHA-1 of the full ciphertext stream, in part order (first link only)
	Next     string // static URI of the next link, "" if this is the last
	PartURIs []string
}

// encode renders a descriptor link in the plain "[Section]" /
// "key = value" form the reference configuration format uses.
func (d *descriptor) encode() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[Main]\n")
	if d.UID != "" {
		fmt.Fprintf(&b, "UID = %s\n", d.UID)
	}
	if d.Nick != "" {
		fmt.Fprintf(&b, "nick = %s\n", d.Nick)
	}
	fmt.Fprintf(&b, "parts = %d\n", d.Parts)
	if d.Length > 0 {
		fmt.Fprintf(&b, "length = %d\n", d.Length)
	}
	if d.Hash != "" {
		fmt.Fprintf(&b, "hash = %s\n", d.Hash)
	}
	if d.Next != "" {
		fmt.Fprintf(&b, "n = %s\n", d.Next)
	}
	fmt.Fprintf(&b, "p = \n")
	if len(d.PartURIs) > 0 {
		fmt.Fprintf(&b, "[Part]\n")
		for i, u := range d.PartURIs {
			fmt.Fprintf(&b, "%d = %s\n", i, u)
		}
	}
	return b.Bytes()
}

// decodeDescriptor parses the plaintext produced by encode, ignoring
// the random padding appended after it to fill a whole block.
func decodeDescriptor(plain []byte) (*descriptor, error) {
	const op = "file.decodeDescriptor"
	d := &descriptor{}
	section := ""
	seenMain := false
	sc := bufio.NewScanner(bytes.NewReader(plain))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\x00")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") {
			section = strings.Trim(line, "[]")
			continue
		}
		kv := strings.SplitN(line, " = ", 2)
		if len(kv) != 2 {
			// Padding bytes that happen to decode as text; the
			// descriptor proper has ended.
			break
		}
		key, value := kv[0], kv[1]
		switch section {
		case "Main":
			seenMain = true
			switch key {
			case "UID":
				d.UID = value
			case "nick":
				d.Nick = value
			case "parts":
				n, err := strconv.Atoi(value)
				if err != nil {
					return nil, errors.E(op, errors.MalformedDescriptor, err)
				}
				d.Parts = n
			case "length":
				n, err := strconv.ParseInt(value, 10, 64)
				if err != nil {
					return nil, errors.E(op, errors.MalformedDescriptor, err)
				}
				d.Length = n
			case "hash":
				d.Hash = value
			case "n":
				d.Next = value
			case "p":
				// Padding marker; its value is meaningless.
			}
		case "Part":
			idx, err := strconv.Atoi(key)
			if err != nil {
				return nil, errors.E(op, errors.MalformedDescriptor, err)
			}
			for len(d.PartURIs) <= idx {
				d.PartURIs = append(d.PartURIs, "")
			}
			d.PartURIs[idx] = value
		}
	}
	if !seenMain {
		return nil, errors.E(op, errors.MalformedDescriptor, errors.Str("missing [Main] section"))
	}
	return d, nil
}
