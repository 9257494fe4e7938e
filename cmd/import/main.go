package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/Roma7-7-7/readyword/internal/config"
	"github.com/Roma7-7-7/readyword/internal/dal"
	dalsql "github.com/Roma7-7-7/readyword/internal/dal/sql"
	"github.com/Roma7-7-7/readyword/internal/data"
	"github.com/Roma7-7-7/readyword/internal/wordsource"
)

const (
	exitCodeOK int = iota
	exitCodeConfigParse
	exitCodeOpenSource
	exitCodeDBConnect
	exitCodeDBMigrate
	exitCodeImport
)

func main() {
	source := flag.String("source", "", "word bank file with word:hint[:topic[:difficulty]] lines")
	timeout := flag.Duration("timeout", time.Minute, "import timeout")
	flag.Parse()

	os.Exit(run(*source, *timeout))
}

func run(source string, timeout time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_ = godotenv.Load()

	conf, err := config.NewImport()
	if err != nil {
		slog.ErrorContext(ctx, "failed to get config", "error", err) //nolint:sloglint // ignore
		return exitCodeConfigParse
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if conf.Dev {
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if source == "" {
		log.ErrorContext(ctx, "source file is required")
		return exitCodeConfigParse
	}
	in, err := os.Open(source)
	if err != nil {
		log.ErrorContext(ctx, "failed to open source file", "source", source, "error", err)
		return exitCodeOpenSource
	}

	db, err := dalsql.Open(ctx, conf.DBType(), conf.DB.URL)
	if err != nil {
		_ = in.Close()
		log.ErrorContext(ctx, "failed to open database", "driver", conf.DB.Driver, "error", err)
		return exitCodeDBConnect
	}
	defer db.Close()

	if err = dalsql.Migrate(ctx, db, conf.DBType(), log); err != nil {
		_ = in.Close()
		log.ErrorContext(ctx, "failed to migrate database", "error", err)
		return exitCodeDBMigrate
	}
	repo := dalsql.NewRepository(db, conf.DBType(), log)

	imported, err := importWords(ctx, repo, in, log)
	var parsingErr *data.ParsingError
	switch {
	case errors.As(err, &parsingErr):
		log.WarnContext(ctx, "skipped invalid lines", "lines", parsingErr.InvalidLines)
	case err != nil:
		log.ErrorContext(ctx, "failed to import words", "imported", imported, "error", err)
		return exitCodeImport
	}

	total, err := repo.CountBankWords(ctx)
	if err != nil {
		log.WarnContext(ctx, "failed to count word bank", "error", err)
	}
	log.InfoContext(ctx, "import finished", "imported", imported, "word_bank_size", total)
	return exitCodeOK
}

func importWords(ctx context.Context, repo dal.WordBankRepository, in *os.File, log *slog.Logger) (int, error) {
	lines := make(chan data.Line)
	imported := 0

	// invalid lines are reported once every valid line is stored
	var parsingErr *data.ParsingError
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		err := data.Parse(egCtx, in, lines)
		if errors.As(err, &parsingErr) {
			return nil
		}
		return err
	})
	eg.Go(func() error {
		for line := range lines {
			if line.Topic != "" && !wordsource.IsTopic(line.Topic) {
				log.WarnContext(egCtx, "unknown topic, word is only served for random picks", "word", line.Word, "topic", line.Topic)
			}
			err := repo.AddBankWord(egCtx, dal.BankWord{
				Word:       line.Word,
				Hint:       line.Hint,
				Topic:      line.Topic,
				Difficulty: string(line.Difficulty),
			})
			if err != nil {
				return err
			}
			imported++
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return imported, err
	}
	if parsingErr != nil {
		return imported, parsingErr
	}
	return imported, nil
}
