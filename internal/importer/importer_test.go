package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"favorites-catalog/internal/domain"
	customersvc "favorites-catalog/internal/service/customer"
)

type stubCustomers struct {
	items []customersvc.Input
	seen  map[string]bool
	err   error
}

func (s *stubCustomers) Create(_ context.Context, in customersvc.Input) (*domain.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	if in.Name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	email := strings.ToLower(in.Email)
	if s.seen[email] {
		return nil, domain.NewConflictError("email already exists")
	}
	s.seen[email] = true
	s.items = append(s.items, in)
	return &domain.Customer{ID: int64(len(s.items)), Name: in.Name, Email: email}, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := "email,name\n" +
		"ana@example.com, Ana Souza\n" +
		",\n" +
		"bo@example.com,Bo\n" +
		"ANA@example.com,Ana Again\n" +
		"nobody@example.com,\n"

	repo := &stubCustomers{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, nil)

	res, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 2 {
		t.Fatalf("expected 2 imported and 2 skipped, got %+v", res)
	}
	if repo.items[0].Name != "Ana Souza" || repo.items[0].Email != "ana@example.com" {
		t.Fatalf("unexpected first customer %+v", repo.items[0])
	}
	if repo.items[1].Email != "bo@example.com" {
		t.Fatalf("expected header order to be respected, got %+v", repo.items[1])
	}
}

func TestCSVImporter_MissingColumn(t *testing.T) {
	imp := NewCSVImporter(strings.NewReader("name\nAna\n"), &stubCustomers{}, nil)
	if _, err := imp.Run(context.Background()); err == nil || !strings.Contains(err.Error(), `"email"`) {
		t.Fatalf("expected missing email column error, got %v", err)
	}
}

func TestCSVImporter_StopsOnUnexpectedError(t *testing.T) {
	boom := errors.New("db down")
	imp := NewCSVImporter(strings.NewReader("name,email\nAna,ana@example.com\n"), &stubCustomers{err: boom}, nil)

	res, err := imp.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	if res.Imported != 0 {
		t.Fatalf("expected nothing imported, got %+v", res)
	}
}
