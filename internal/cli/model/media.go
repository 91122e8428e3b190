package model

import (
	"path/filepath"
	"strings"
)

// MediaKind - вид вложения для превью и вывода.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

var videoExt = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
}

// KindOfFilename определяет вид по имени файла: video для известных
// видеорасширений, иначе image.
func KindOfFilename(name string) MediaKind {
	if videoExt[strings.ToLower(filepath.Ext(name))] {
		return MediaVideo
	}
	return MediaImage
}

// KindOfMediaType определяет вид по media type ("video/mp4", "image/png").
func KindOfMediaType(mediaType string) MediaKind {
	if strings.HasPrefix(strings.ToLower(mediaType), "video/") {
		return MediaVideo
	}
	return MediaImage
}

// Attachment - ссылка на сохранённый медиафайл.
type Attachment struct {
	Filename string
	Kind     MediaKind
}

// NewAttachment создаёт вложение с видом по имени файла.
func NewAttachment(filename string) Attachment {
	return Attachment{Filename: filename, Kind: KindOfFilename(filename)}
}

// LocalFile - выбранный на клиенте файл, ещё не загруженный.
type LocalFile struct {
	Path      string
	Name      string // имя файла для multipart
	MediaType string
}

// Kind определяет вид файла по его media type.
func (f LocalFile) Kind() MediaKind {
	return KindOfMediaType(f.MediaType)
}
