package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"persona-engine/internal/domain"
)

func openTempRepo(t *testing.T) *SQLitePersonaRepository {
	t.Helper()
	repo, err := OpenSQLitePersonaRepository(filepath.Join(t.TempDir(), "personas.db"))
	if err != nil {
		t.Fatalf("expected sqlite open to succeed, got %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepo_OpenRequiresPath(t *testing.T) {
	if _, err := OpenSQLitePersonaRepository("  "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for blank path, got %v", err)
	}
}

func TestSQLiteRepo_GetAbsentIsNotAnError(t *testing.T) {
	repo := openTempRepo(t)

	p, err := repo.Get(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("expected no error for absent persona, got %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil persona for absent id, got %+v", p)
	}
}

func TestSQLiteRepo_SaveGetRoundTrip(t *testing.T) {
	repo := openTempRepo(t)
	persona := domain.NewDefaultPersona("user-1")
	persona.Openness = 4.2

	if err := repo.Save(context.Background(), "user-1", persona); err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}

	got, err := repo.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected get to succeed, got %v", err)
	}
	if got == nil || got.UserID != "user-1" || got.Openness != 4.2 {
		t.Fatalf("expected stored persona back, got %+v", got)
	}
}

func TestSQLiteRepo_SaveValidation(t *testing.T) {
	repo := openTempRepo(t)
	valid := domain.NewDefaultPersona("user-1")

	t.Run("empty user id", func(t *testing.T) {
		if err := repo.Save(context.Background(), "", valid); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
	t.Run("nil persona", func(t *testing.T) {
		if err := repo.Save(context.Background(), "user-1", nil); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
	t.Run("invalid persona", func(t *testing.T) {
		broken := domain.NewDefaultPersona("user-1")
		broken.Extraversion = 0.2
		if err := repo.Save(context.Background(), "user-1", broken); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSQLiteRepo_SaveIsUpsert(t *testing.T) {
	repo := openTempRepo(t)

	first := domain.NewDefaultPersona("user-1")
	if err := repo.Save(context.Background(), "user-1", first); err != nil {
		t.Fatalf("expected first save to succeed, got %v", err)
	}

	second := domain.NewDefaultPersona("user-1")
	second.Agreeableness = 1.5
	if err := repo.Save(context.Background(), "user-1", second); err != nil {
		t.Fatalf("expected overwrite to succeed, got %v", err)
	}

	got, _ := repo.Get(context.Background(), "user-1")
	if got.Agreeableness != 1.5 {
		t.Fatalf("expected overwritten agreeableness 1.5, got %v", got.Agreeableness)
	}
}

func TestSQLiteRepo_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.db")

	repo, err := OpenSQLitePersonaRepository(path)
	if err != nil {
		t.Fatalf("expected sqlite open to succeed, got %v", err)
	}
	persona := domain.NewDefaultPersona("user-1")
	persona.Conscientiousness = 2.25
	if err := repo.Save(context.Background(), "user-1", persona); err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("expected close to succeed, got %v", err)
	}

	reopened, err := OpenSQLitePersonaRepository(path)
	if err != nil {
		t.Fatalf("expected reopen to succeed, got %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected get after reopen to succeed, got %v", err)
	}
	if got == nil || got.Conscientiousness != 2.25 {
		t.Fatalf("expected persisted persona after reopen, got %+v", got)
	}
}

func TestSQLiteRepo_ListPaginatesByUserID(t *testing.T) {
	repo := openTempRepo(t)
	for _, id := range []string{"user-03", "user-01", "user-05", "user-02", "user-04"} {
		if err := repo.Save(context.Background(), id, domain.NewDefaultPersona(id)); err != nil {
			t.Fatalf("expected seed save for %s, got %v", id, err)
		}
	}

	page, err := repo.List(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(page) != 2 || page[0].UserID != "user-01" || page[1].UserID != "user-02" {
		t.Fatalf("expected first page [user-01 user-02], got %+v", page)
	}

	page, _ = repo.List(context.Background(), 2, 4)
	if len(page) != 1 || page[0].UserID != "user-05" {
		t.Fatalf("expected last page [user-05], got %+v", page)
	}

	all, _ := repo.List(context.Background(), 0, 0)
	if len(all) != 5 {
		t.Fatalf("expected default limit to return all 5, got %d", len(all))
	}

	empty, _ := repo.List(context.Background(), 10, 99)
	if len(empty) != 0 {
		t.Fatalf("expected empty page beyond the end, got %+v", empty)
	}
}

func TestSQLiteRepo_FindSimilarOrdersByDistance(t *testing.T) {
	repo := openTempRepo(t)

	ref := domain.NewDefaultPersona("user-ref")
	near := domain.NewDefaultPersona("user-near")
	near.Openness = 3.1
	mid := domain.NewDefaultPersona("user-mid")
	mid.Openness = 4.0
	far := domain.NewDefaultPersona("user-far")
	far.Openness = 1.0
	far.Neuroticism = 5.0

	for id, p := range map[string]*domain.Persona{"user-ref": ref, "user-near": near, "user-mid": mid, "user-far": far} {
		if err := repo.Save(context.Background(), id, p); err != nil {
			t.Fatalf("expected seed save for %s, got %v", id, err)
		}
	}

	got, err := repo.FindSimilar(context.Background(), ref, 2)
	if err != nil {
		t.Fatalf("expected find similar to succeed, got %v", err)
	}
	if len(got) != 2 || got[0].UserID != "user-near" || got[1].UserID != "user-mid" {
		t.Fatalf("expected [user-near user-mid], got %+v", got)
	}

	all, _ := repo.FindSimilar(context.Background(), ref, 10)
	for _, p := range all {
		if p.UserID == "user-ref" {
			t.Fatalf("did not expect the reference persona in results")
		}
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(all))
	}
}
