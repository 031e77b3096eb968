package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
)

// Виды загружаемых файлов.
const (
	KindImage   = "image"
	KindPackage = "package"
)

// UploadStorage отвечает за файловое хранилище пакетов, иконок и скриншотов.
// Все файлы лежат в одном плоском каталоге, наружу отдаётся путь вида
// /uploads/<имя файла> без разбивки по подкаталогам.
type UploadStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewUploadStorage создаёт файловое хранилище.
func NewUploadStorage(rootPath string, maxUploadMB int64) (*UploadStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &UploadStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save сохраняет файл и возвращает его публичный путь /uploads/<имя>.
// kind определяет допустимые типы содержимого: KindImage принимает
// png/jpeg/webp, KindPackage — zip-совместимые архивы (apk, ipa).
func (s *UploadStorage) Save(ctx context.Context, originalName, kind string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	// Сначала читаем магические байты и проверяем реальный тип файла.
	head := make([]byte, 262)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", 0, fmt.Errorf("storage: не удалось прочитать файл: %w", err)
	}
	head = head[:n]

	if err := checkKind(head, kind); err != nil {
		return "", 0, err
	}

	safeName := sanitizeFilename(originalName)
	fileName := fmt.Sprintf("%d_%s", time.Now().UnixNano(), safeName)
	targetPath := filepath.Join(s.rootPath, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: размер файла превышает лимит %d байт", s.maxUploadBytes)
	}

	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return path.Join("/uploads", fileName), written, nil
}

// Delete удаляет файл по его публичному пути.
func (s *UploadStorage) Delete(ctx context.Context, publicPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := path.Base(publicPath)
	target := filepath.Join(s.rootPath, name)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// checkKind сверяет магические байты с ожидаемым видом файла.
func checkKind(head []byte, kind string) error {
	t, err := filetype.Match(head)
	if err != nil || t == filetype.Unknown {
		return fmt.Errorf("storage: не удалось определить тип файла")
	}

	switch kind {
	case KindImage:
		switch t {
		case matchers.TypePng, matchers.TypeJpeg, matchers.TypeWebp:
			return nil
		}
		return fmt.Errorf("storage: разрешены только изображения png, jpeg и webp")
	case KindPackage:
		// apk и ipa — это zip-архивы с другим расширением.
		if t == matchers.TypeZip {
			return nil
		}
		return fmt.Errorf("storage: пакет приложения должен быть zip-совместимым архивом")
	}

	return fmt.Errorf("storage: неизвестный вид файла %q", kind)
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}
