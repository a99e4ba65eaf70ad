package model

import (
	"fmt"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

// Media types a Blob may carry.
const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
)

// Blob is binary image data tagged with its media type.
type Blob struct {
	MIME string `json:"mime"`
	Data []byte `json:"data"`
}

// PNG wraps data as an image/png blob.
func PNG(data []byte) Blob { return Blob{MIME: MIMEPNG, Data: data} }

// JPEG wraps data as an image/jpeg blob.
func JPEG(data []byte) Blob { return Blob{MIME: MIMEJPEG, Data: data} }

// DataURI renders the blob as data:<mime>;base64,<payload>.
func (b Blob) DataURI() string {
	return dataurl.New(b.Data, b.MIME).String()
}

// Ext returns the conventional file extension for the blob's media type.
func (b Blob) Ext() string {
	switch b.MIME {
	case MIMEJPEG, "image/jpg":
		return "jpg"
	default:
		return "png"
	}
}

// ParseDataURI decodes a data URI produced by DataURI. Only base64 image
// payloads are accepted.
func ParseDataURI(s string) (Blob, error) {
	du, err := dataurl.DecodeString(s)
	if err != nil {
		return Blob{}, fmt.Errorf("decode data uri: %w", err)
	}
	if du.Encoding != dataurl.EncodingBase64 {
		return Blob{}, fmt.Errorf("data uri is not base64 encoded")
	}
	mime := strings.ToLower(du.ContentType())
	if mime == "image/jpg" {
		mime = MIMEJPEG
	}
	if !strings.HasPrefix(mime, "image/") {
		return Blob{}, fmt.Errorf("data uri carries %q, not an image", mime)
	}
	return Blob{MIME: mime, Data: du.Data}, nil
}
