package port

import (
	"encoding/binary"
	"fmt"

	"github.com/LJxTHUCS/model-fs/fsval"
)

// The exact byte layout of fstat/getdents/getcwd payloads is owned by
// the wire codec, which is out of scope for this module (spec §1).
// These encode/decode helpers give StatePort something concrete to
// call so it can be exercised and tested without a real codec; a
// production CommandChannel is free to supply differently-shaped
// bytes as long as it also supplies decoders that produce the same
// fsval types.

// StatSize is the encoded size of a FileStat payload.
const StatSize = 8 + 4 + 4 + 4 + 4 + 1

// EncodeFileStat renders st in StatePort's reference wire layout.
func EncodeFileStat(st fsval.FileStat) []byte {
	b := make([]byte, StatSize)
	binary.LittleEndian.PutUint64(b[0:8], st.Ino)
	binary.LittleEndian.PutUint32(b[8:12], uint32(st.Mode))
	binary.LittleEndian.PutUint32(b[12:16], st.Nlink)
	binary.LittleEndian.PutUint32(b[16:20], st.Uid)
	binary.LittleEndian.PutUint32(b[20:24], st.Gid)
	b[24] = byte(st.Kind)
	return b
}

// DecodeFileStat parses a StatSize-byte payload into a FileStat.
func DecodeFileStat(b []byte) (fsval.FileStat, error) {
	if len(b) < StatSize {
		return fsval.FileStat{}, fmt.Errorf("port: fstat payload too short: %d bytes", len(b))
	}
	return fsval.FileStat{
		Ino:   binary.LittleEndian.Uint64(b[0:8]),
		Mode:  fsval.FileMode(binary.LittleEndian.Uint32(b[8:12])),
		Nlink: binary.LittleEndian.Uint32(b[12:16]),
		Uid:   binary.LittleEndian.Uint32(b[16:20]),
		Gid:   binary.LittleEndian.Uint32(b[20:24]),
		Kind:  fsval.FileKind(b[24]),
	}, nil
}

// EncodeDirEntry renders e in StatePort's reference wire layout: ino,
// kind, then the name length-prefixed by a single byte (names here
// are always short pool names, well under 256 bytes).
func EncodeDirEntry(e fsval.DirEntry) []byte {
	b := make([]byte, 8+1+1+len(e.Name))
	binary.LittleEndian.PutUint64(b[0:8], e.Ino)
	b[8] = byte(e.Kind)
	b[9] = byte(len(e.Name))
	copy(b[10:], e.Name)
	return b
}

// DecodeDirEntry parses an EncodeDirEntry payload.
func DecodeDirEntry(b []byte) (fsval.DirEntry, error) {
	if len(b) < 10 {
		return fsval.DirEntry{}, fmt.Errorf("port: dirent payload too short: %d bytes", len(b))
	}
	nameLen := int(b[9])
	if len(b) < 10+nameLen {
		return fsval.DirEntry{}, fmt.Errorf("port: dirent payload truncated name: want %d have %d", nameLen, len(b)-10)
	}
	return fsval.DirEntry{
		Ino:  binary.LittleEndian.Uint64(b[0:8]),
		Kind: fsval.FileKind(b[8]),
		Name: string(b[10 : 10+nameLen]),
	}, nil
}

// EncodePath renders an absolute path string as a raw getcwd payload
// (just its bytes — getcwd carries no structure beyond the string).
func EncodePath(s string) []byte { return []byte(s) }

// DecodePath parses a getcwd payload back into a path string.
func DecodePath(b []byte) string { return string(b) }
