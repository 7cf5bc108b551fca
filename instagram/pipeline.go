package instagram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"erfworld/events"
	"erfworld/models"
	"erfworld/utils"
)

// CalendarHashtag marks a post for import into the events calendar.
const CalendarHashtag = "#ERFCalendar"

// MediaFetcher resolves a media id into metadata plus image URLs.
type MediaFetcher interface {
	FetchMedia(ctx context.Context, mediaID string) (*Media, []string, error)
}

// TextExtractor turns the first flyer image into raw text.
type TextExtractor interface {
	ExtractText(ctx context.Context, imageURL string) (string, error)
}

// AssetUploader stores the images and returns their references in input order,
// plus a thumbnail URL for the primary image (may be empty).
type AssetUploader interface {
	Upload(ctx context.Context, mediaID string, urls []string) ([]models.AssetRef, string, error)
}

// EventWriter persists the assembled record.
type EventWriter interface {
	Create(ctx context.Context, event *models.Event) error
}

// Notifier fans out event-created notifications. Best effort; never fails the
// import.
type Notifier interface {
	EventCreated(ctx context.Context, event *models.Event)
}

// Importer drives one post through fetch → OCR → parse → upload → write.
type Importer struct {
	Fetcher  MediaFetcher
	OCR      TextExtractor
	Uploader AssetUploader
	Writer   EventWriter
	Parser   *Parser
	Notifier Notifier
}

// ProcessMedia imports a single post. Errors abort this post only; callers
// processing several webhook changes keep going on siblings.
func (imp *Importer) ProcessMedia(ctx context.Context, mediaID string) error {
	media, urls, err := imp.Fetcher.FetchMedia(ctx, mediaID)
	if err != nil {
		return err
	}

	if len(urls) == 0 {
		// e.g. an all-video album; nothing to import
		log.Printf("instagram post %s has no importable images, skipping", mediaID)
		return nil
	}

	text, err := imp.OCR.ExtractText(ctx, urls[0])
	if err != nil {
		return fmt.Errorf("ocr for %s: %w", mediaID, err)
	}

	details := imp.Parser.ParseEventDetails(text)

	refs, thumb, err := imp.Uploader.Upload(ctx, mediaID, urls)
	if err != nil {
		return fmt.Errorf("upload assets for %s: %w", mediaID, err)
	}

	start := imp.Parser.CombineDateAndTime(details.Date, details.Time)
	if details.Date == nil && media.Timestamp != "" {
		// No date on the flyer: prefer the provider's post timestamp over "now"
		if ts, perr := time.Parse("2006-01-02T15:04:05-0700", media.Timestamp); perr == nil {
			start = ts
		}
	}

	event := &models.Event{
		EventID:               utils.GetUUID(),
		Title:                 truncate(details.Title, 100),
		Slug:                  events.SlugForInstagram(mediaID),
		Image:                 refs[0].URL,
		Thumbnail:             thumb,
		Date:                  start,
		Description:           details.Description,
		Location:              details.Location,
		InstagramURL:          media.Permalink,
		ImportedFromInstagram: true,
		PublishedAt:           time.Now().UTC(),
	}
	if details.EndDate != nil {
		end := imp.Parser.CombineDateAndTime(details.EndDate, details.EndTime)
		event.EndDate = &end
	}
	if len(refs) > 1 {
		for _, ref := range refs[1:] {
			event.AdditionalImages = append(event.AdditionalImages, ref.URL)
		}
	}

	if err := imp.Writer.Create(ctx, event); err != nil {
		if errors.Is(err, events.ErrDuplicateEvent) {
			log.Printf("instagram post %s already imported, skipping", mediaID)
			return nil
		}
		return fmt.Errorf("create event for %s: %w", mediaID, err)
	}

	log.Printf("event created from instagram post %s: %s", mediaID, event.Slug)

	if imp.Notifier != nil {
		imp.Notifier.EventCreated(ctx, event)
	}
	return nil
}
