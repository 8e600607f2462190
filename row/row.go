// Package row defines the fixed schema stored in the btree's leaves:
// a uint32 id, a short username, and an email, packed at fixed byte
// offsets the way the teacher's table package packs column.Schema
// entries — except the schema here is not configurable, per spec.
package row

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	MaxUsernameLen = 32
	MaxEmailLen    = 255

	idSize       = 4
	usernameSize = MaxUsernameLen + 1 // + trailing NUL
	emailSize    = MaxEmailLen + 1    // + trailing NUL

	idOffset       = 0
	usernameOffset = idOffset + idSize
	emailOffset    = usernameOffset + usernameSize

	// Size is the fixed on-disk row size: 4 + 33 + 256 = 293 bytes.
	Size = idOffset + idSize + usernameSize + emailSize - idOffset
)

// Row is one record: ID is the primary key and determines tree order.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

// Validate checks the field-length limits enforced by the statement
// parser (§6): usernames up to 32 bytes, emails up to 255 bytes.
func (r Row) Validate() error {
	if len(r.Username) > MaxUsernameLen {
		return errors.Errorf("username %q exceeds %d characters", r.Username, MaxUsernameLen)
	}
	if len(r.Email) > MaxEmailLen {
		return errors.Errorf("email %q exceeds %d characters", r.Email, MaxEmailLen)
	}
	return nil
}

// Serialize field-wise memcpys r into dst, which must be exactly Size
// bytes. Strings are left-aligned and null-padded.
func Serialize(r Row, dst []byte) {
	for i := range dst {
		dst[i] = 0
	}
	binary.LittleEndian.PutUint32(dst[idOffset:idOffset+idSize], r.ID)
	copy(dst[usernameOffset:usernameOffset+usernameSize], r.Username)
	copy(dst[emailOffset:emailOffset+emailSize], r.Email)
}

// Deserialize reads a Row back out of a Size-byte buffer previously
// written by Serialize.
func Deserialize(src []byte) Row {
	return Row{
		ID:       binary.LittleEndian.Uint32(src[idOffset : idOffset+idSize]),
		Username: trimNul(src[usernameOffset : usernameOffset+usernameSize]),
		Email:    trimNul(src[emailOffset : emailOffset+emailSize]),
	}
}

func trimNul(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
