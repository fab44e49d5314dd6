package service

import (
	"context"
	"fmt"
	"strings"

	appErr "github.com/xxxsen/pharmassist/internal/pkg/errors"
	"github.com/xxxsen/pharmassist/internal/repo"
)

type TableService struct {
	tables *repo.TableDescRepo
}

func NewTableService(tables *repo.TableDescRepo) *TableService {
	return &TableService{tables: tables}
}

func (s *TableService) List(ctx context.Context) (map[string]string, error) {
	return s.tables.List(ctx)
}

func (s *TableService) Save(ctx context.Context, table, description string) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", fmt.Errorf("%w: table required", appErr.ErrInvalid)
	}
	if err := s.tables.Save(ctx, table, description); err != nil {
		return "", err
	}
	return s.tables.Get(ctx, table)
}
