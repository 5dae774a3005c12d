package export

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// CRC32 computes the IEEE CRC-32 of data.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// CRC32Bytes returns the CRC-32 as a 4-byte big-endian slice.
func CRC32Bytes(sum uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, sum)
	return buf
}

// CRC32Base64 encodes sum the way object stores expect a CRC32 checksum
// header.
func CRC32Base64(sum uint32) string {
	return base64.StdEncoding.EncodeToString(CRC32Bytes(sum))
}

// FileCRC32 streams the file at path through CRC-32.
func FileCRC32(path string) (uint32, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	h := crc32.NewIEEE()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, 0, fmt.Errorf("checksum file: %w", err)
	}
	return h.Sum32(), n, nil
}
