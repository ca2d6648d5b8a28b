package util

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const sniffLen = 512

// SniffMimeType 读取开头 512 字节判断 MIME 类型，返回的 Reader 仍包含完整内容
func SniffMimeType(reader io.Reader, allowedTypes []string) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	head = head[:n]
	full := io.MultiReader(bytes.NewReader(head), reader)

	mimeType := http.DetectContentType(head)
	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) {
			return mimeType, full, nil
		}
	}
	return mimeType, full, fmt.Errorf("%w: unsupported file type %s", ErrInvalidFile, mimeType)
}

// SniffPackage 离线内容包必须是 zip
func SniffPackage(reader io.Reader) (io.Reader, error) {
	_, full, err := SniffMimeType(reader, []string{"application/zip"})
	return full, err
}
