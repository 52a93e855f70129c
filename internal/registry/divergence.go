package registry

import (
	"context"
	"encoding/base64"

	"registra/internal/ports"
	"registra/internal/types"

	json "github.com/goccy/go-json"
	"github.com/jmespath/go-jmespath"
	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"
)

var enc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
var dec, _ = zstd.NewReader(nil)

// DivergenceReporter is the operator-visible channel for index writes that
// failed after the primary store had already committed. It never fails the
// calling operation: every outlet failure is logged and swallowed.
//
// Outlets, each optional except the log line:
//   - logrus error with the id/op/reason fields
//   - a journal row carrying a compressed snapshot of the unmirrored
//     document, for a later re-index job
//   - an SNS event, gated by an optional JMESPath filter over the event
//     payload (filter semantics match the old passthrough rules: the
//     expression must yield a boolean; Negate inverts it)
type DivergenceReporter struct {
	journal ports.DivergenceJournal
	pub     ports.Publisher

	TopicARN     string
	FilterExpr   string
	FilterNegate bool
}

func NewDivergenceReporter(journal ports.DivergenceJournal, pub ports.Publisher) *DivergenceReporter {
	return &DivergenceReporter{journal: journal, pub: pub}
}

// Report records that doc failed to propagate to the index during op.
func (r *DivergenceReporter) Report(ctx context.Context, op string, doc types.Document, cause error) {
	log.WithError(cause).WithFields(log.Fields{
		"id": doc.ID,
		"op": op,
	}).Error("index write failed after primary commit; index is stale for this id")

	if r == nil {
		return
	}

	d := types.Divergence{
		ID:     doc.ID,
		Op:     op,
		Reason: cause.Error(),
		At:     timeNow().UnixNano(),
	}
	if snap, err := EncodeSnapshot(doc); err == nil {
		d.Snapshot = snap
	} else {
		log.WithError(err).WithField("id", doc.ID).Warn("failed to encode divergence snapshot")
	}

	if r.journal != nil {
		if err := r.journal.Record(ctx, d); err != nil {
			log.WithError(err).WithField("id", doc.ID).Error("failed to journal divergence")
		}
	}

	if r.pub != nil && r.TopicARN != "" {
		r.publish(ctx, d)
	}
}

func (r *DivergenceReporter) publish(ctx context.Context, d types.Divergence) {
	event := map[string]any{
		"id":     d.ID,
		"op":     d.Op,
		"reason": d.Reason,
		"at":     d.At,
	}
	if !r.matches(event) {
		return
	}
	b, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).WithField("id", d.ID).Error("failed to marshal divergence event")
		return
	}
	if err := r.pub.PublishRaw(ctx, r.TopicARN, b); err != nil {
		log.WithError(err).WithField("id", d.ID).Error("failed to publish divergence event")
	}
}

// matches applies the JMESPath gate. An empty expression publishes
// everything; an expression that errors or yields a non-boolean publishes
// nothing (fail closed).
func (r *DivergenceReporter) matches(event map[string]any) bool {
	if r.FilterExpr == "" {
		return true
	}
	v, err := jmespath.Search(r.FilterExpr, event)
	if err != nil {
		log.WithError(err).Warn("divergence filter expression error")
		return false
	}
	matched, ok := v.(bool)
	if !ok {
		return false
	}
	if r.FilterNegate {
		return !matched
	}
	return matched
}

// EncodeSnapshot compresses and armors the document for journal storage.
func EncodeSnapshot(doc types.Document) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(enc.EncodeAll(b, nil)), nil
}

// DecodeSnapshot is the inverse of EncodeSnapshot; re-index tooling uses it
// to recover the document that never reached the index.
func DecodeSnapshot(s string) (types.Document, error) {
	var doc types.Document
	compressed, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return doc, err
	}
	b, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return doc, err
	}
	err = json.Unmarshal(b, &doc)
	return doc, err
}
