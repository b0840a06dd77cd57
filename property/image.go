package property

import (
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

// Image is a property holding a picture as a data URI.
type Image struct {
	*Basic
}

func NewImage(s *Schema, name string) *Image {
	return &Image{
		Basic: newBasic(s, name, KindImage),
	}
}

// DataURI encodes the content of r as a base64 data URI with a sniffed media type.
func DataURI(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:%s;base64,%s", http.DetectContentType(b), base64.StdEncoding.EncodeToString(b)), nil
}

// ParseDataURI returns the media type and size of the payload of a data URI
// produced by DataURI.
func ParseDataURI(uri string) (mediaType string, size int, ok bool) {
	header, payload, found := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !found || !strings.HasPrefix(uri, "data:") {
		return "", 0, false
	}
	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return mediaType, len(payload), true
	}
	return mediaType, base64.StdEncoding.DecodedLen(len(payload)) - strings.Count(payload, "="), true
}

// SetFile returns at once, and sets the property to the data URI of r once
// r is fully read, via the schema dispatcher.
// Nothing orders two concurrent SetFile calls: the last one to finish reading wins.
func (i *Image) SetFile(r io.Reader) {
	go func() {
		uri, err := DataURI(r)
		if err != nil {
			log.Printf("reading image for %q: %v", i.Name(), err)
			return
		}
		i.schema.dispatcher.Post(func() {
			i.Set(uri)
		})
	}()
}

// SetFileSync reads r and sets the property before returning.
func (i *Image) SetFileSync(r io.Reader) bool {
	uri, err := DataURI(r)
	if err != nil {
		log.Printf("reading image for %q: %v", i.Name(), err)
		return false
	}
	return i.Set(uri)
}
