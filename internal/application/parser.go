package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"plantify/internal/domain/entity"
	"plantify/internal/domain/port"
)

var (
	leadingFence  = regexp.MustCompile("(?i)^\\s*```[ \\t]*(?:json)?")
	trailingFence = regexp.MustCompile("\\s*```\\s*$")
)

// FenceStripper снимает markdown-ограждение кода вокруг JSON.
// Сервис иногда игнорирует просьбу не использовать markdown.
type FenceStripper struct{}

// Normalize удаляет ведущие и завершающие ``` (с пометкой json или без) в любом регистре.
func (FenceStripper) Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		next := leadingFence.ReplaceAllString(s, "")
		next = trailingFence.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == s {
			return s
		}
		s = next
	}
}

// NormalizerChain применяет нормализаторы по порядку.
type NormalizerChain []port.ResponseNormalizer

func (c NormalizerChain) Normalize(raw string) string {
	for _, n := range c {
		raw = n.Normalize(raw)
	}
	return raw
}

// Parser разбирает текст ответа в PlantRecord.
type Parser struct {
	normalizer port.ResponseNormalizer
}

// NewParser создаёт парсер. Без нормализаторов используется FenceStripper.
func NewParser(normalizers ...port.ResponseNormalizer) *Parser {
	if len(normalizers) == 0 {
		return &Parser{normalizer: FenceStripper{}}
	}
	return &Parser{normalizer: NormalizerChain(normalizers)}
}

// Parse возвращает запись только если все шесть полей заполнены.
// Содержимое полей не проверяется.
func (p *Parser) Parse(raw string) (entity.PlantRecord, error) {
	text := p.normalizer.Normalize(raw)
	if text == "" {
		return entity.PlantRecord{}, fmt.Errorf("%w: empty response", entity.ErrMalformedResponse)
	}

	var record entity.PlantRecord
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&record); err != nil {
		return entity.PlantRecord{}, fmt.Errorf("%w: decode: %v", entity.ErrMalformedResponse, err)
	}
	if err := ensureEOF(dec); err != nil {
		return entity.PlantRecord{}, fmt.Errorf("%w: %v", entity.ErrMalformedResponse, err)
	}

	if missing := record.MissingFields(); len(missing) > 0 {
		return entity.PlantRecord{}, fmt.Errorf("%w: missing fields %s", entity.ErrMalformedResponse, strings.Join(missing, ", "))
	}
	return record, nil
}

func ensureEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	err := dec.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("trailing data: %v", err)
	}
	return fmt.Errorf("trailing data: %s", bytes.TrimSpace(extra))
}
