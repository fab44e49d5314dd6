package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pharmassist/internal/model"
	appErr "github.com/xxxsen/pharmassist/internal/pkg/errors"
)

const (
	fallbackSnippetChars = 300
	fallbackSnippetCount = 3
)

type Synthesizer struct {
	retriever *Retriever
	kpi       KPISummarizer
	tables    TableDescriber
}

func NewSynthesizer(retriever *Retriever, kpi KPISummarizer, tables TableDescriber) *Synthesizer {
	return &Synthesizer{retriever: retriever, kpi: kpi, tables: tables}
}

// Answer retrieves sources for question, gathers the KPI summary and table
// descriptions from the collaborators, then composes the answer.
func (s *Synthesizer) Answer(ctx context.Context, tenantID, question string, dates model.DateRange, settings *Settings) (*model.Answer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	sources, err := s.retriever.Search(ctx, tenantID, question, settings)
	if err != nil {
		return nil, err
	}
	var summary *model.KPISummary
	if s.kpi != nil {
		summary, err = s.kpi.Summarize(ctx, tenantID, dates)
		if err != nil {
			return nil, err
		}
	}
	tables := map[string]string{}
	if s.tables != nil {
		tables, err = s.tables.List(ctx)
		if err != nil {
			return nil, err
		}
	}
	return s.Compose(ctx, question, sources, summary, tables, settings)
}

// Compose builds the final answer. Without a configured backend the answer
// comes from a local template and never fails; with one, the backend output
// is returned verbatim and its errors are surfaced as ErrBackend.
func (s *Synthesizer) Compose(ctx context.Context, question string, sources []model.Source, summary *model.KPISummary, tables map[string]string, settings *Settings) (*model.Answer, error) {
	if summary == nil {
		summary = &model.KPISummary{}
	}
	backend := settings.backend()
	var text string
	if !backend.Configured() {
		text = fallbackAnswer(question, sources, summary, tables)
	} else {
		prompt := buildPrompt(question, sources, summary, tables)
		out, err := backend.Generate(ctx, prompt)
		if err != nil {
			logutil.GetLogger(ctx).Error("generation backend failed", zap.String("backend", backend.Name()), zap.Error(err))
			return nil, fmt.Errorf("%w: %s: %w", appErr.ErrBackend, backend.Name(), err)
		}
		text = out
	}
	return &model.Answer{Answer: text, Sources: sources, KPISummary: summary}, nil
}

func buildPrompt(question string, sources []model.Source, summary *model.KPISummary, tables map[string]string) string {
	return fmt.Sprintf("Question: %s\nKPI: %s\nDescriptions tables: %s\nSources: %s",
		question, summary.String(), mustJSON(tables), mustJSON(sources))
}

func fallbackAnswer(question string, sources []model.Source, summary *model.KPISummary, tables map[string]string) string {
	var snippets []string
	for _, src := range sources {
		if src.Content == "" {
			continue
		}
		snippet := truncateRunes(src.Content, fallbackSnippetChars)
		snippet = strings.TrimSpace(strings.ReplaceAll(snippet, "\n", " "))
		snippets = append(snippets, "- "+snippet)
		if len(snippets) == fallbackSnippetCount {
			break
		}
	}
	snippetText := strings.Join(snippets, "\n")
	if snippetText == "" {
		snippetText = "- Aucun extrait trouvé."
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	var tableLines []string
	for _, name := range names {
		if desc := tables[name]; desc != "" {
			tableLines = append(tableLines, "- "+name+": "+desc)
		}
	}
	tableSummary := strings.Join(tableLines, "\n")
	if tableSummary == "" {
		tableSummary = "- Aucun descriptif de table."
	}

	return "Réponse basée sur les documents indexés et les KPI disponibles.\n" +
		"Question: " + question + "\n" +
		"Résumé KPI: " + summary.String() + "\n" +
		"Descriptions de tables:\n" +
		tableSummary + "\n" +
		"Extraits principaux:\n" +
		snippetText
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func mustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
