package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	"HomeLedger/internal/cli/model"
)

// StatusError - неуспешный ответ удалённого хранилища.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: server returned status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client работает с удалённым хранилищем по HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient создаёт клиента для baseURL ("http://host:port").
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

// do отправляет req и возвращает ответ с уже прочитанным и обрезанным телом.
// Ответы вне 2xx превращаются в *StatusError.
func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	body = bytes.TrimSpace(body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, body, &StatusError{
			Method: req.Method,
			Path:   req.URL.Path,
			Code:   resp.StatusCode,
			Body:   string(body),
		}
	}
	return resp, body, nil
}

// DoJSON отправляет payload (nil - без тела) как JSON и декодирует ответ в out (может быть nil).
func (c *Client) DoJSON(ctx context.Context, method, path string, payload, out any) (*http.Response, error) {
	var rd io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	resp, body, err := c.do(req)
	if err != nil {
		return resp, err
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp, nil
}

// Form - упорядоченное тело multipart/form-data.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct{ key, value string }

type formFile struct {
	key  string
	file model.LocalFile
}

// Add добавляет текстовое поле; повторные ключи сервер читает как список.
func (f *Form) Add(key, value string) {
	f.fields = append(f.fields, formField{key: key, value: value})
}

// AddFile добавляет файловую часть; файл читается с диска при кодировании.
func (f *Form) AddFile(key string, file model.LocalFile) {
	f.files = append(f.files, formFile{key: key, file: file})
}

// Values возвращает все значения текстового поля по порядку.
func (f *Form) Values(key string) []string {
	var out []string
	for _, fl := range f.fields {
		if fl.key == key {
			out = append(out, fl.value)
		}
	}
	return out
}

// Value возвращает первое значение текстового поля.
func (f *Form) Value(key string) string {
	if v := f.Values(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

// Files возвращает файловые части ключа.
func (f *Form) Files(key string) []model.LocalFile {
	var out []model.LocalFile
	for _, ff := range f.files {
		if ff.key == key {
			out = append(out, ff.file)
		}
	}
	return out
}

func (f *Form) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, fl := range f.fields {
		if err := mw.WriteField(fl.key, fl.value); err != nil {
			return nil, "", err
		}
	}
	for _, ff := range f.files {
		if err := writeFilePart(mw, ff); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func writeFilePart(mw *multipart.Writer, ff formFile) error {
	src, err := os.Open(ff.file.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", ff.file.Path, err)
	}
	defer src.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, ff.key, ff.file.Name))
	ct := ff.file.MediaType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, src)
	return err
}

// DoMultipart отправляет form как multipart/form-data и декодирует JSON-ответ в out (может быть nil).
func (c *Client) DoMultipart(ctx context.Context, method, path string, form *Form, out any) (*http.Response, error) {
	body, contentType, err := form.encode()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	resp, respBody, err := c.do(req)
	if err != nil {
		return resp, err
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp, nil
}
