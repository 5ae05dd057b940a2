package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/resumebot/pkg/archive"
	"github.com/artem13815/resumebot/pkg/document"
	"github.com/artem13815/resumebot/pkg/profile"
	"github.com/artem13815/resumebot/pkg/resume"
)

// Upload is one document event from the chat channel.
type Upload struct {
	Sender   profile.Identity
	Document document.Ref
}

// Result describes a successfully persisted upload.
type Result struct {
	UploadID   uuid.UUID
	Member     profile.Member
	Saved      profile.SaveResult
	ProfileURL string
}

// StageError carries the last stage an upload reached before it failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Deps are the collaborators of Service. Uploads and Archive are optional.
type Deps struct {
	Fetcher   document.Fetcher
	Extractor resume.Extractor
	Profiles  profile.UseCase
	Uploads   UploadLog
	Archive   archive.Store
	// BaseURL of the front end; profile links are BaseURL/profile/<id>.
	BaseURL string
	Logger  *slog.Logger
}

// Service runs the upload state machine
// received -> fetched -> extracted -> parsed -> persisted -> replied,
// any failure ending in failed.
type Service struct {
	fetcher   document.Fetcher
	extractor resume.Extractor
	profiles  profile.UseCase
	uploads   UploadLog
	archive   archive.Store
	baseURL   string
	log       *slog.Logger
	now       func() time.Time
}

func NewService(d Deps) *Service {
	if d.Archive == nil {
		d.Archive = archive.Nop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Service{
		fetcher:   d.Fetcher,
		extractor: d.Extractor,
		profiles:  d.Profiles,
		uploads:   d.Uploads,
		archive:   d.Archive,
		baseURL:   strings.TrimRight(d.BaseURL, "/"),
		log:       d.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ProfileURL is the front-end link for a member.
func (s *Service) ProfileURL(memberID int64) string {
	return s.baseURL + "/profile/" + strconv.FormatInt(memberID, 10)
}

// Ingest runs every stage up to persisted without replying to anyone.
func (s *Service) Ingest(ctx context.Context, up Upload) (Result, error) {
	return s.run(ctx, up, nil)
}

// HandleDocument runs the full pipeline and replies to the sender. The
// returned error is for logging only; the sender has already been told.
func (s *Service) HandleDocument(ctx context.Context, up Upload, r Replier) error {
	_, err := s.run(ctx, up, r)
	return err
}

// HandleStart registers the sender and greets them.
func (s *Service) HandleStart(ctx context.Context, id profile.Identity, r Replier) error {
	if _, err := s.profiles.Register(ctx, id); err != nil {
		s.log.Error("register member", "telegram_id", id.ExternalID, "err", err)
		if rerr := r.Reply(ctx, MsgStartFailed); rerr != nil {
			s.log.Error("reply", "telegram_id", id.ExternalID, "err", rerr)
		}
		return err
	}
	return r.Reply(ctx, WelcomeMessage(id.Name))
}

// HandleProfileLink replies with the sender's profile link, if any.
func (s *Service) HandleProfileLink(ctx context.Context, id profile.Identity, r Replier) error {
	m, err := s.profiles.FindMember(ctx, id.ExternalID)
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return r.Reply(ctx, MsgNoProfile)
	case err != nil:
		s.log.Error("find member", "telegram_id", id.ExternalID, "err", err)
		if rerr := r.Reply(ctx, MsgStartFailed); rerr != nil {
			s.log.Error("reply", "telegram_id", id.ExternalID, "err", rerr)
		}
		return err
	}
	return r.Reply(ctx, ProfileLinkMessage(s.ProfileURL(m.ID)))
}

// HandleHistory replies with the sender's most recent uploads.
func (s *Service) HandleHistory(ctx context.Context, id profile.Identity, r Replier) error {
	if s.uploads == nil {
		return r.Reply(ctx, MsgNoUploads)
	}
	recs, err := s.uploads.ListByTelegramID(ctx, id.ExternalID, historyLimit)
	if err != nil {
		s.log.Error("list uploads", "telegram_id", id.ExternalID, "err", err)
		if rerr := r.Reply(ctx, MsgStartFailed); rerr != nil {
			s.log.Error("reply", "telegram_id", id.ExternalID, "err", rerr)
		}
		return err
	}
	return r.Reply(ctx, HistoryMessage(recs))
}

func (s *Service) run(ctx context.Context, up Upload, r Replier) (Result, error) {
	res := Result{UploadID: uuid.New()}
	rec := UploadRecord{
		ID:         res.UploadID,
		TelegramID: up.Sender.ExternalID,
		FileName:   up.Document.Name,
		MimeType:   up.Document.MimeType,
		SizeBytes:  up.Document.Size,
		CreatedAt:  s.now(),
	}
	log := s.log.With("upload_id", res.UploadID.String(), "telegram_id", up.Sender.ExternalID)
	stage := StageReceived
	log.Info("upload stage", "stage", stage, "file", up.Document.Name)

	fail := func(err error) (Result, error) {
		serr := &StageError{Stage: stage, Err: err}
		log.Error("upload failed", "stage", stage, "err", err)
		rec.Stage = stage
		rec.Status = UploadStatusFailed
		rec.Error = err.Error()
		if r != nil {
			if rerr := r.Reply(ctx, MsgProcessingFailed); rerr != nil {
				log.Error("reply failure notice", "err", rerr)
			}
		}
		s.record(ctx, log, rec)
		return Result{}, serr
	}
	advance := func(next Stage) {
		stage = next
		log.Info("upload stage", "stage", stage)
	}

	doc, err := s.fetcher.Fetch(ctx, up.Document)
	if err != nil {
		return fail(err)
	}
	rec.SizeBytes = int64(len(doc.Data))
	if rec.MimeType == "" {
		rec.MimeType = doc.MimeType
	}
	advance(StageFetched)

	if uri, err := s.archive.Put(ctx, archive.Key(res.UploadID.String(), doc.Name), doc); err != nil {
		log.Warn("archive document", "err", err)
	} else {
		rec.ArchiveURI = uri
	}

	text, err := document.ExtractText(doc)
	if err != nil {
		return fail(err)
	}
	advance(StageExtracted)

	parsed, err := s.extractor.Extract(ctx, text)
	if err != nil {
		var pe *resume.ParseError
		if errors.As(err, &pe) {
			log.Debug("unparseable llm reply", "raw", pe.Raw)
		}
		return fail(err)
	}
	advance(StageParsed)

	saved, err := s.profiles.SaveResume(ctx, up.Sender, parsed.ProfileData())
	if err != nil {
		return fail(err)
	}
	res.Member = saved.Member
	res.Saved = saved
	res.ProfileURL = s.ProfileURL(saved.Member.ID)
	rec.MemberID = &saved.Member.ID
	advance(StagePersisted)
	log.Info("resume saved", "member_id", saved.Member.ID,
		"experiences", saved.Experiences, "skills", saved.Skills, "links", saved.Links)

	if r != nil {
		if err := r.Reply(ctx, SuccessMessage(res.ProfileURL)); err != nil {
			// The data is committed; only the notification is lost.
			log.Error("reply", "stage", stage, "err", err)
			rec.Stage = stage
			rec.Status = UploadStatusFailed
			rec.Error = "reply: " + err.Error()
			s.record(ctx, log, rec)
			return res, &StageError{Stage: stage, Err: err}
		}
		advance(StageReplied)
	}

	rec.Stage = stage
	rec.Status = UploadStatusOK
	s.record(ctx, log, rec)
	return res, nil
}

func (s *Service) record(ctx context.Context, log *slog.Logger, rec UploadRecord) {
	if s.uploads == nil {
		return
	}
	if err := s.uploads.Record(ctx, rec); err != nil {
		log.Warn("record upload", "err", err)
	}
}
