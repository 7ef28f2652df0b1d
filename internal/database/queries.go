package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"postsummarizer/internal/domain"
	"postsummarizer/internal/settings"
)

// GetChatSettingsWithDefault returns the stored settings of the chat, or defaults
// when the chat never changed anything.
func (d *Database) GetChatSettingsWithDefault(
	ctx context.Context,
	chatID int64,
	defaults settings.Settings,
) (settings.Settings, error) {
	query := `select provider, model, api_key, ollama_url, max_tokens, temperature,
	system_prompt, auto_summarize
	from chat_settings
	where chat_id = ?`

	var (
		s           settings.Settings
		provider    string
		temperature sql.NullFloat64
	)

	err := d.db.QueryRowContext(ctx, query, chatID).Scan(
		&provider,
		&s.Model,
		&s.APIKey,
		&s.OllamaURL,
		&s.MaxTokens,
		&temperature,
		&s.SystemPrompt,
		&s.AutoSummarize,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return defaults, nil
	}
	if err != nil {
		return settings.Settings{}, fmt.Errorf("scan row: %w", err)
	}

	s.Provider = settings.Provider(provider)
	if temperature.Valid {
		s.Temperature = settings.Float(temperature.Float64)
	}

	return s.Normalize(), nil
}

func (d *Database) UpsertChatSettings(ctx context.Context, chatID int64, s settings.Settings) error {
	query := `insert into chat_settings
	(chat_id, provider, model, api_key, ollama_url, max_tokens, temperature,
	system_prompt, auto_summarize, updated_at)
	values (?, ?, ?, ?, ?, ?, ?, ?, ?, current_timestamp)
	on conflict (chat_id) do update
	set provider = excluded.provider,
	model = excluded.model,
	api_key = excluded.api_key,
	ollama_url = excluded.ollama_url,
	max_tokens = excluded.max_tokens,
	temperature = excluded.temperature,
	system_prompt = excluded.system_prompt,
	auto_summarize = excluded.auto_summarize,
	updated_at = excluded.updated_at`

	var temperature sql.NullFloat64
	if s.Temperature != nil {
		temperature = sql.NullFloat64{Float64: *s.Temperature, Valid: true}
	}

	_, err := d.db.ExecContext(ctx, query,
		chatID,
		string(s.Provider),
		s.Model,
		s.APIKey,
		s.OllamaURL,
		s.MaxTokens,
		temperature,
		s.SystemPrompt,
		s.AutoSummarize,
	)

	return err
}

func (d *Database) AddFeed(
	ctx context.Context,
	chatID int64,
	feedURL string,
	feedTitle string,
) error {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return errors.New("feed URL is empty")
	}

	feedTitle = strings.TrimSpace(feedTitle)
	if feedTitle == "" {
		feedTitle = feedURL
	}

	query := "insert or ignore into feeds (chat_id, url, title) values (?, ?, ?)"

	_, err := d.db.ExecContext(ctx, query, chatID, feedURL, feedTitle)

	return err
}

func (d *Database) UpdateFeedTitle(ctx context.Context, feedID int64, feedTitle string) error {
	feedTitle = strings.TrimSpace(feedTitle)
	if feedTitle == "" {
		return errors.New("feed title is empty")
	}

	query := "update feeds set title = ? where id = ?"

	_, err := d.db.ExecContext(ctx, query, feedTitle, feedID)

	return err
}

// RemoveFeed deletes a feed of the chat. Feeds of other chats are left alone.
func (d *Database) RemoveFeed(ctx context.Context, chatID int64, feedID int64) error {
	query := "delete from feeds where id = ? and chat_id = ?"

	res, err := d.db.ExecContext(ctx, query, feedID, chatID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (d *Database) GetChatFeeds(ctx context.Context, chatID int64) ([]domain.ChatFeed, error) {
	return d.queryFeeds(ctx, "GetChatFeeds",
		"select id, chat_id, url, title from feeds where chat_id = ? order by id", chatID)
}

func (d *Database) GetAllFeeds(ctx context.Context) ([]domain.ChatFeed, error) {
	return d.queryFeeds(ctx, "GetAllFeeds",
		"select id, chat_id, url, title from feeds order by id")
}

func (d *Database) queryFeeds(
	ctx context.Context,
	operation string,
	query string,
	args ...any,
) ([]domain.ChatFeed, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", operation)
		}
	}()

	var feeds []domain.ChatFeed
	for rows.Next() {
		var f domain.ChatFeed
		if err = rows.Scan(&f.ID, &f.ChatID, &f.URL, &f.Title); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		f.URL = strings.TrimSpace(f.URL)
		f.Title = strings.TrimSpace(f.Title)

		feeds = append(feeds, f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return feeds, nil
}

// MarkSeen records a post of a feed and reports whether it was new.
func (d *Database) MarkSeen(ctx context.Context, feedID int64, postURL string) (bool, error) {
	query := "insert or ignore into seen_posts (feed_id, post_url) values (?, ?)"

	res, err := d.db.ExecContext(ctx, query, feedID, strings.TrimSpace(postURL))
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get affected rows: %w", err)
	}

	return n > 0, nil
}

// PruneSeen forgets posts seen before the cutoff.
func (d *Database) PruneSeen(ctx context.Context, before time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx, "delete from seen_posts where seen_at < ?",
		before.UTC().Format(time.DateTime))
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// SaveSummary stores s under a new id and returns it.
func (d *Database) SaveSummary(ctx context.Context, s domain.Summary) (string, error) {
	s.ID = uuid.NewString()
	if s.View == "" {
		s.View = domain.ViewSummary
	}

	query := `insert into summaries
	(id, chat_id, message_id, source_url, original, summary, view)
	values (?, ?, ?, ?, ?, ?, ?)`

	_, err := d.db.ExecContext(ctx, query,
		s.ID,
		s.ChatID,
		s.MessageID,
		s.SourceURL,
		s.Original,
		s.Summary,
		string(s.View),
	)
	if err != nil {
		return "", err
	}

	return s.ID, nil
}

func (d *Database) GetSummary(ctx context.Context, id string) (domain.Summary, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Summary{}, ErrNotFound
	}

	query := `select id, chat_id, message_id, source_url, original, summary, view, created_at
	from summaries
	where id = ?`

	var (
		s    domain.Summary
		view string
	)

	err := d.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.ChatID,
		&s.MessageID,
		&s.SourceURL,
		&s.Original,
		&s.Summary,
		&view,
		&s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Summary{}, ErrNotFound
	}
	if err != nil {
		return domain.Summary{}, fmt.Errorf("scan row: %w", err)
	}

	s.View = domain.SummaryView(view)

	return s, nil
}

func (d *Database) SetSummaryMessage(ctx context.Context, id string, messageID int) error {
	return d.updateSummary(ctx, "update summaries set message_id = ? where id = ?", messageID, id)
}

func (d *Database) SetSummaryView(ctx context.Context, id string, view domain.SummaryView) error {
	return d.updateSummary(ctx, "update summaries set view = ? where id = ?", string(view), id)
}

func (d *Database) SetSummaryText(ctx context.Context, id string, summary string) error {
	return d.updateSummary(ctx,
		"update summaries set summary = ?, view = ? where id = ?", summary, string(domain.ViewSummary), id)
}

func (d *Database) updateSummary(ctx context.Context, query string, args ...any) error {
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}
