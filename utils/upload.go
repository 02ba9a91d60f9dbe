package utils

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SaveBase64Image ถอด base64 แล้วเขียนลง folder คืน path สำหรับเก็บใน DB
func SaveBase64Image(b64, folder string) (string, error) {
	// รองรับทั้ง raw base64 และ data URL ("data:image/png;base64,....")
	if i := strings.Index(b64, ","); i >= 0 && strings.HasPrefix(b64, "data:") {
		b64 = b64[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%d.png", time.Now().UnixNano())
	path := filepath.Join(folder, filename)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// SavePDF เก็บไฟล์เมนู PDF ที่อัปโหลดมาแบบ multipart
func SavePDF(file *multipart.FileHeader, folder string) (string, error) {
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return "", fmt.Errorf("only .pdf files are accepted")
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%d.pdf", time.Now().UnixNano())
	path := filepath.Join(folder, filename)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
