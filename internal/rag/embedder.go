package rag

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"

	appErr "github.com/xxxsen/pharmassist/internal/pkg/errors"
)

// Embedder maps text to a vector of a fixed dimension.
type Embedder interface {
	Embed(text string, dim int) []float64
}

type hashEmbedder struct{}

// NewHashEmbedder returns the deterministic sha256 pseudo-embedder.
func NewHashEmbedder() Embedder {
	return hashEmbedder{}
}

func (hashEmbedder) Embed(text string, dim int) []float64 {
	return Embed(text, dim)
}

// Embed maps each byte of sha256(text) to b/255 and tiles the 32 values up to
// dim. The result is periodic with period sha256.Size.
func Embed(text string, dim int) []float64 {
	if dim <= 0 {
		return nil
	}
	digest := sha256.Sum256([]byte(text))
	vec := make([]float64, dim)
	for i := range vec {
		vec[i] = float64(digest[i%len(digest)]) / 255.0
	}
	return vec
}

// VectorLiteral renders vec as "[v1,v2,...]" with 6 decimals, the storage form
// of the embedding column.
func VectorLiteral(vec []float64) string {
	var sb strings.Builder
	sb.Grow(len(vec)*9 + 2)
	sb.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(v, 'f', 6, 64))
	}
	sb.WriteByte(']')
	return sb.String()
}

func ParseVectorLiteral(literal string) ([]float64, error) {
	s := strings.TrimSpace(literal)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("%w: vector literal must be bracketed", appErr.ErrInvalid)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return []float64{}, nil
	}
	parts := strings.Split(body, ",")
	vec := make([]float64, 0, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: vector component %d: %v", appErr.ErrInvalid, i, err)
		}
		vec = append(vec, v)
	}
	return vec, nil
}
