package sync

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/kaniwani/kw-api/internal/domain"
	"github.com/kaniwani/kw-api/internal/platform/wanikani"
	"github.com/kaniwani/kw-api/internal/reconcile"
	"github.com/kaniwani/kw-api/internal/redact"
	"github.com/kaniwani/kw-api/internal/store"
)

// CatalogRefresher keeps the shared vocabulary catalog aligned with the
// remote subject data. It runs under a service-level credential rather
// than any user's key, since the catalog is shared by every user.
type CatalogRefresher struct {
	vocab  store.VocabularyStore
	client wanikani.Client
	logger *slog.Logger

	// runTx applies a changeset transactionally. Overridable in tests.
	runTx func(ctx context.Context, fn store.TxFn) error
}

// NewCatalogRefresher creates a CatalogRefresher.
// Panics if db, the vocabulary store, or the client is nil.
// If logger is nil, a default logger will be used.
func NewCatalogRefresher(
	db *sql.DB,
	vocab store.VocabularyStore,
	client wanikani.Client,
	logger *slog.Logger,
) *CatalogRefresher {
	if db == nil {
		panic("db cannot be nil")
	}
	if vocab == nil {
		panic("vocabulary store cannot be nil")
	}
	if client == nil {
		panic("client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CatalogRefresher{
		vocab:  vocab,
		client: client,
		logger: logger.With(slog.String("component", "catalog_refresher")),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}
}

// RefreshResult reports what a catalog refresh accomplished.
type RefreshResult struct {
	Created int
	Updated int
	Skipped int
}

// Refresh drains the remote subject catalog and gets-or-creates a local
// vocabulary for every entry, reconciling the catalog fields when the
// remote record is newer. Each subject is applied in its own transaction
// so concurrent refreshes cannot interleave partial reading writes.
//
// Per-subject errors are logged and counted as skipped; only a failed
// fetch aborts the refresh.
func (c *CatalogRefresher) Refresh(ctx context.Context, filter wanikani.SubjectFilter) (RefreshResult, error) {
	log := c.logger
	seq := c.client.Subjects(ctx, filter)

	var result RefreshResult
	for {
		subject, err := seq.Next(ctx)
		if errors.Is(err, wanikani.Done) {
			break
		}
		if err != nil {
			log.Error("subject fetch failed, aborting catalog refresh",
				slog.String("error", redact.Error(err)))
			return result, err
		}

		created, updated, err := c.refreshSubject(ctx, subject)
		if err != nil {
			log.Error("failed to refresh subject, skipping",
				slog.Int64("subject_id", subject.SubjectID),
				slog.String("error", redact.Error(err)))
			result.Skipped++
			continue
		}
		if created {
			result.Created++
		}
		if updated {
			result.Updated++
		}
	}

	log.Info("catalog refresh finished",
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

func (c *CatalogRefresher) refreshSubject(
	ctx context.Context,
	subject *wanikani.SubjectSnapshot,
) (created, updated bool, err error) {
	now := time.Now().UTC()

	vocab, err := c.vocab.GetBySubjectID(ctx, subject.SubjectID)
	if errors.Is(err, store.ErrVocabularyNotFound) {
		vocab, err = domain.NewVocabulary(subject.SubjectID, subject.PrimaryMeaning())
		if err != nil {
			return false, false, err
		}
		vocab.Level = subject.Level
		if err := c.vocab.Create(ctx, vocab); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				// Lost a creation race; reload and reconcile normally.
				vocab, err = c.vocab.GetBySubjectID(ctx, subject.SubjectID)
				if err != nil {
					return false, false, err
				}
			} else {
				return false, false, err
			}
		} else {
			created = true
		}
	} else if err != nil {
		return false, false, err
	}

	if !reconcile.VocabularyOutOfDate(vocab, subject) {
		return created, false, nil
	}

	change := reconcile.Vocabulary(vocab, subject, now)
	err = c.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := c.vocab.WithTx(tx)

		if err := txStore.Update(ctx, change.Vocabulary); err != nil {
			return err
		}
		for i := range change.ReadingsToAdd {
			if err := txStore.AddReading(ctx, &change.ReadingsToAdd[i]); err != nil {
				return err
			}
		}
		if len(change.ReadingIDsToDelete) > 0 {
			if err := txStore.DeleteReadings(ctx, change.ReadingIDsToDelete); err != nil {
				return err
			}
		}
		return txStore.ReplacePartsOfSpeech(ctx, vocab.ID, change.PartsOfSpeech)
	})
	if err != nil {
		return created, false, err
	}

	return created, true, nil
}
