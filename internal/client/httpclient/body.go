package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Body encodes a request payload.
type Body interface {
	encode() (io.Reader, string, error)
}

type jsonBody struct{ v any }

// JSON encodes v as the request body.
func JSON(v any) Body { return jsonBody{v: v} }

func (b jsonBody) encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", fmt.Errorf("encode json body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

// Multipart is a multipart/form-data payload built field by field.
type Multipart struct {
	fields []formField
	files  []formFile
}

// NewMultipart returns an empty form.
func NewMultipart() *Multipart {
	return &Multipart{}
}

// Field appends a text field.
func (m *Multipart) Field(name, value string) *Multipart {
	m.fields = append(m.fields, formField{name: name, value: value})
	return m
}

// File appends a file part with an explicit content type.
func (m *Multipart) File(field, filename, contentType string, data []byte) *Multipart {
	m.files = append(m.files, formFile{field: field, filename: filename, contentType: contentType, data: data})
	return m
}

// Value returns the first value of the named text field.
func (m *Multipart) Value(name string) (string, bool) {
	for _, f := range m.fields {
		if f.name == name {
			return f.value, true
		}
	}
	return "", false
}

// HasFile reports whether a file part was added under field.
func (m *Multipart) HasFile(field string) bool {
	for _, f := range m.files {
		if f.field == field {
			return true
		}
	}
	return false
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}
	for _, f := range m.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(f.field), quoteEscaper.Replace(f.filename)))
		contentType := f.contentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.field, err)
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
