package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/carbonaccess/plategate/internal/plategate/ocr"
	"github.com/carbonaccess/plategate/internal/plategate/plate"
	"github.com/carbonaccess/plategate/internal/plategate/store"
	"github.com/carbonaccess/plategate/internal/plategate/types"
	"github.com/carbonaccess/plategate/internal/plategate/vision"
)

// DeniedNote is recorded when a check denies a plate with no registered vehicle.
const DeniedNote = "vehicle not registered"

type AccessPolicy struct {
	// LogUnregistered appends an event with no vehicle reference for plates
	// that are not in the registry. When false such plates are not logged.
	LogUnregistered bool
}

func DefaultAccessPolicy() AccessPolicy {
	return AccessPolicy{LogUnregistered: true}
}

// Pipeline is the image side of the access check.
type Pipeline struct {
	Engine     ocr.Engine
	Preprocess vision.Options
	Extractor  plate.Extractor
}

type AccessService struct {
	registry   *RegistryService
	eventStore store.AccessEventStore
	policy     AccessPolicy
	pipeline   Pipeline
	log        *slog.Logger

	locks *plateLocks
	now   func() time.Time
}

func NewAccessService(
	reg *RegistryService,
	es store.AccessEventStore,
	policy AccessPolicy,
	pipeline Pipeline,
	log *slog.Logger,
) *AccessService {
	if pipeline.Engine == nil {
		pipeline.Engine = ocr.Disabled{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &AccessService{
		registry:   reg,
		eventStore: es,
		policy:     policy,
		pipeline:   pipeline,
		log:        log,
		locks:      newPlateLocks(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RegisterAccess appends one access event for plate. Unknown plates are
// logged with no vehicle reference unless the policy says otherwise, in
// which case nothing is written and false is returned.
func (s *AccessService) RegisterAccess(ctx context.Context, raw string, allowed bool, notes string) (bool, error) {
	p := plate.Normalize(raw)
	if p == "" {
		return false, ErrEmptyPlate
	}

	unlock := s.locks.lock(p)
	defer unlock()

	ev, ok, err := s.record(ctx, p, allowed, types.SourceManual, notes, s.now())
	if err != nil {
		return false, err
	}
	if !ok {
		s.log.InfoContext(ctx, "access not logged: plate not registered", "plate", p)
		return false, nil
	}
	s.logDecision(ctx, ev)
	return true, nil
}

// CheckPlate decides access for a typed plate.
func (s *AccessService) CheckPlate(ctx context.Context, typed string) (types.CheckResult, error) {
	p, ok := plate.Canonical(typed)
	if !ok {
		if p == "" {
			return types.CheckResult{}, ErrEmptyPlate
		}
		return types.CheckResult{
			Status:    types.StatusInvalidFormat,
			Plate:     p,
			DecidedAt: s.now(),
		}, nil
	}
	return s.decide(ctx, p, types.SourceTyped)
}

// CheckImage runs the recognition pipeline on an uploaded image and decides
// access for the plate it finds. Recognition failures return a
// *ocr.RecognitionError and log nothing.
func (s *AccessService) CheckImage(ctx context.Context, data []byte) (types.CheckResult, error) {
	cands, err := s.recognize(ctx, data)
	if err != nil {
		return types.CheckResult{}, err
	}

	p, ok := s.pipeline.Extractor.Extract(cands)
	if !ok {
		s.log.InfoContext(ctx, "no plate found in image",
			"engine", s.pipeline.Engine.Name(),
			"candidates", len(cands),
		)
		return types.CheckResult{
			Status:     types.StatusNoPlateFound,
			Candidates: cands,
			DecidedAt:  s.now(),
		}, nil
	}

	res, err := s.decide(ctx, p, types.SourceImage)
	if err != nil {
		return types.CheckResult{}, err
	}
	res.Candidates = cands
	return res, nil
}

// RecognizePlate runs the recognition pipeline without deciding access.
func (s *AccessService) RecognizePlate(ctx context.Context, data []byte) (string, bool, error) {
	cands, err := s.recognize(ctx, data)
	if err != nil {
		return "", false, err
	}
	p, ok := s.pipeline.Extractor.Extract(cands)
	return p, ok, nil
}

func (s *AccessService) recognize(ctx context.Context, data []byte) ([]types.Candidate, error) {
	engine := s.pipeline.Engine

	img, err := vision.Decode(data)
	if err != nil {
		return nil, &ocr.RecognitionError{Engine: engine.Name(), Stage: ocr.StageDecode, Err: err}
	}
	gray := vision.Preprocess(img, s.pipeline.Preprocess)

	cands, err := engine.Recognize(ctx, gray)
	if err != nil {
		var rerr *ocr.RecognitionError
		if errors.As(err, &rerr) {
			return nil, err
		}
		return nil, &ocr.RecognitionError{Engine: engine.Name(), Stage: ocr.StageRecognize, Err: err}
	}
	return cands, nil
}

// decide looks p up and logs the outcome. p must be canonical and valid.
func (s *AccessService) decide(ctx context.Context, p string, src types.AccessSource) (types.CheckResult, error) {
	unlock := s.locks.lock(p)
	defer unlock()

	now := s.now()
	rec, found, err := s.registry.LookupVehicle(ctx, p)
	if err != nil {
		return types.CheckResult{}, err
	}

	res := types.CheckResult{Plate: p, DecidedAt: now, Status: types.StatusDenied}
	notes := DeniedNote
	if found {
		res.Status = types.StatusAllowed
		res.Record = &rec
		notes = ""
	}

	ev, ok, err := s.record(ctx, p, found, src, notes, now)
	if err != nil {
		return types.CheckResult{}, err
	}
	if ok {
		res.Event = &ev
		s.logDecision(ctx, ev)
	}
	return res, nil
}

func (s *AccessService) record(
	ctx context.Context,
	p string,
	allowed bool,
	src types.AccessSource,
	notes string,
	at time.Time,
) (types.AccessEvent, bool, error) {
	return s.eventStore.RecordEvent(ctx, store.AccessEventRecord{
		Plate:          p,
		OccurredAt:     at,
		Allowed:        allowed,
		Source:         src,
		Notes:          notes,
		RequireVehicle: !s.policy.LogUnregistered,
	})
}

func (s *AccessService) logDecision(ctx context.Context, ev types.AccessEvent) {
	attrs := []any{
		"plate", ev.Plate,
		"allowed", ev.Allowed,
		"source", ev.Source,
		"event_id", ev.ID,
	}
	if ev.VehicleID != nil {
		attrs = append(attrs, "vehicle_id", *ev.VehicleID)
	}
	if ev.Allowed {
		s.log.InfoContext(ctx, "access allowed", attrs...)
		return
	}
	s.log.WarnContext(ctx, "access denied", attrs...)
}
