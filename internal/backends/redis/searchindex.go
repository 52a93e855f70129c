package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"registra/internal/types"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	docKeyNameTemplate = "_registra_doc_%s"
	titlesKeyName      = "_registra_titles"

	// memberSep joins title and id in the sorted-set member. Every member
	// carries score 0 so ZRANGEBYLEX orders purely by the member bytes,
	// i.e. by title, with the id as a stable tiebreaker.
	memberSep = "\x00"
)

// SearchIndex implements ports.SearchIndex on Redis: one JSON document per
// company plus a single lexicographic sorted set for title-ordered paging.
type SearchIndex struct {
	cli *redis.Client
}

func NewSearchIndex(cli *redis.Client) *SearchIndex {
	return &SearchIndex{cli: cli}
}

func (s *SearchIndex) Upsert(ctx context.Context, doc types.Document) error {
	prevTitle, hasPrev, err := s.currentTitle(ctx, doc.ID)
	if err != nil {
		return types.Err(types.ErrIndex, err, "")
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return types.Err(types.ErrIndex, err, "")
	}

	pipe := s.cli.TxPipeline()
	if stale, ok := staleMember(prevTitle, hasPrev, doc); ok {
		pipe.ZRem(ctx, titlesKeyName, stale)
	}
	pipe.Set(ctx, getDocKeyName(doc.ID), string(b), 0)
	pipe.ZAdd(ctx, titlesKeyName, redis.Z{Score: 0, Member: member(doc.Title, doc.ID)})
	if _, err := pipe.Exec(ctx); err != nil {
		return types.Err(types.ErrIndex, err, "")
	}
	return nil
}

// Delete is idempotent: removing an id that was never indexed is a no-op.
func (s *SearchIndex) Delete(ctx context.Context, id string) error {
	prevTitle, hasPrev, err := s.currentTitle(ctx, id)
	if err != nil {
		return types.Err(types.ErrIndex, err, "")
	}
	if !hasPrev {
		return nil
	}
	pipe := s.cli.TxPipeline()
	pipe.ZRem(ctx, titlesKeyName, member(prevTitle, id))
	pipe.Del(ctx, getDocKeyName(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return types.Err(types.ErrIndex, err, "")
	}
	return nil
}

func (s *SearchIndex) QuerySorted(ctx context.Context, order types.SortOrder, offset, limit int) ([]types.Document, error) {
	exists, err := s.cli.Exists(ctx, titlesKeyName).Result()
	if err != nil {
		return nil, types.Err(types.ErrIndex, err, "")
	}
	if exists == 0 {
		return nil, types.ErrIndexMissing
	}

	rng := &redis.ZRangeBy{
		Min:    "-",
		Max:    "+",
		Offset: int64(offset),
		Count:  int64(limit),
	}
	var members []string
	if order == types.SortDesc {
		members, err = s.cli.ZRevRangeByLex(ctx, titlesKeyName, rng).Result()
	} else {
		members, err = s.cli.ZRangeByLex(ctx, titlesKeyName, rng).Result()
	}
	if err != nil {
		return nil, types.Err(types.ErrIndex, err, "")
	}
	if len(members) == 0 {
		return []types.Document{}, nil
	}

	keys := make([]string, 0, len(members))
	for _, m := range members {
		_, id := splitMember(m)
		keys = append(keys, getDocKeyName(id))
	}
	vals, err := s.cli.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, types.Err(types.ErrIndex, err, "")
	}

	docs := make([]types.Document, 0, len(vals))
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// Sort entry without a document: a torn write; skip it rather
			// than failing the whole page.
			continue
		}
		var doc types.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, types.Err(types.ErrIndex, err, "invalid document in index")
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// currentTitle reads the indexed document's title so its sort entry can be
// removed when the title changes or the document is deleted.
func (s *SearchIndex) currentTitle(ctx context.Context, id string) (string, bool, error) {
	raw, err := s.cli.Get(ctx, getDocKeyName(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	var doc types.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return "", false, err
	}
	return doc.Title, true, nil
}

func getDocKeyName(id string) string { return fmt.Sprintf(docKeyNameTemplate, id) }

func member(title, id string) string { return title + memberSep + id }

// staleMember names the sort entry an upsert must drop. Without it a title
// change would leave the old member behind and the company would list twice.
func staleMember(prevTitle string, hasPrev bool, doc types.Document) (string, bool) {
	if !hasPrev || prevTitle == doc.Title {
		return "", false
	}
	return member(prevTitle, doc.ID), true
}

func splitMember(m string) (title, id string) {
	i := strings.LastIndex(m, memberSep)
	if i < 0 {
		return m, ""
	}
	return m[:i], m[i+1:]
}
