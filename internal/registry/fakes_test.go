package registry

import (
	"context"
	"fmt"
	"sort"

	"registra/internal/types"
)

// fakeCompanyStore is an in-memory ports.CompanyStore. Every call is counted
// and appended to seq so tests can assert that the primary store is touched
// strictly before the index.
type fakeCompanyStore struct {
	byID    map[string]types.Company
	byTitle map[string]string
	nextID  int
	calls   int
	seq     *[]string

	getErr    error
	findErr   error
	insertErr error
	updateErr error
	deleteErr error
}

func newFakeCompanyStore(seq *[]string) *fakeCompanyStore {
	return &fakeCompanyStore{
		byID:    map[string]types.Company{},
		byTitle: map[string]string{},
		seq:     seq,
	}
}

func (f *fakeCompanyStore) step(name string) {
	f.calls++
	*f.seq = append(*f.seq, "store."+name)
}

func (f *fakeCompanyStore) GetByID(_ context.Context, id string) (types.Company, error) {
	f.step("get")
	if f.getErr != nil {
		return types.Company{}, f.getErr
	}
	c, ok := f.byID[id]
	if !ok {
		return types.Company{}, types.ErrNotFound
	}
	return c, nil
}

func (f *fakeCompanyStore) FindByTitle(_ context.Context, title string) (types.Company, error) {
	f.step("find")
	if f.findErr != nil {
		return types.Company{}, f.findErr
	}
	id, ok := f.byTitle[title]
	if !ok {
		return types.Company{}, types.ErrNotFound
	}
	return f.byID[id], nil
}

func (f *fakeCompanyStore) Insert(_ context.Context, c types.Company) (types.Company, error) {
	f.step("insert")
	if f.insertErr != nil {
		return types.Company{}, f.insertErr
	}
	if _, taken := f.byTitle[c.Title]; taken {
		return types.Company{}, types.Err(types.ErrDuplicate, nil, "company with title %q already exists", c.Title)
	}
	f.nextID++
	c.ID = fmt.Sprintf("%024d", f.nextID)
	f.byID[c.ID] = c
	f.byTitle[c.Title] = c.ID
	return c, nil
}

func (f *fakeCompanyStore) Update(_ context.Context, c types.Company, prevTitle string) (types.Company, error) {
	f.step("update")
	if f.updateErr != nil {
		return types.Company{}, f.updateErr
	}
	if _, ok := f.byID[c.ID]; !ok {
		return types.Company{}, types.ErrNotFound
	}
	if c.Title != prevTitle {
		if _, taken := f.byTitle[c.Title]; taken {
			return types.Company{}, types.Err(types.ErrDuplicate, nil, "company with title %q already exists", c.Title)
		}
		delete(f.byTitle, prevTitle)
		f.byTitle[c.Title] = c.ID
	}
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeCompanyStore) Delete(_ context.Context, id, title string) error {
	f.step("delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return types.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.byTitle, title)
	return nil
}

// fakeIndex is an in-memory ports.SearchIndex. It reports ErrIndexMissing
// until the first successful upsert, mirroring a lazily created index, and
// keeps the title sort entries as their own set next to the documents: a
// stale entry left behind by a title change shows up as a ghost listing row.
type fakeIndex struct {
	docs    map[string]types.Document
	members map[string]string // "title\x00id" -> id
	created bool
	seq     *[]string

	upserts int
	deletes int
	queries int

	upsertErr error
	deleteErr error
	queryErr  error
}

func newFakeIndex(seq *[]string) *fakeIndex {
	return &fakeIndex{
		docs:    map[string]types.Document{},
		members: map[string]string{},
		seq:     seq,
	}
}

func indexMember(title, id string) string { return title + "\x00" + id }

func (f *fakeIndex) step(name string) {
	*f.seq = append(*f.seq, "index."+name)
}

func (f *fakeIndex) Upsert(_ context.Context, doc types.Document) error {
	f.step("upsert")
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if prev, ok := f.docs[doc.ID]; ok && prev.Title != doc.Title {
		delete(f.members, indexMember(prev.Title, doc.ID))
	}
	f.docs[doc.ID] = doc
	f.members[indexMember(doc.Title, doc.ID)] = doc.ID
	f.created = true
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id string) error {
	f.step("delete")
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if prev, ok := f.docs[id]; ok {
		delete(f.members, indexMember(prev.Title, id))
	}
	delete(f.docs, id) // absent id is a no-op
	return nil
}

func (f *fakeIndex) QuerySorted(_ context.Context, order types.SortOrder, offset, limit int) ([]types.Document, error) {
	f.step("query")
	f.queries++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if !f.created {
		return nil, types.ErrIndexMissing
	}
	keys := make([]string, 0, len(f.members))
	for m := range f.members {
		keys = append(keys, m)
	}
	sort.Strings(keys)
	if order == types.SortDesc {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	docs := make([]types.Document, 0, len(keys))
	for _, m := range keys {
		if doc, ok := f.docs[f.members[m]]; ok {
			docs = append(docs, doc)
		}
	}
	if offset >= len(docs) {
		return []types.Document{}, nil
	}
	docs = docs[offset:]
	if limit < len(docs) {
		docs = docs[:limit]
	}
	return docs, nil
}

type fakeJournal struct {
	records []types.Divergence
	err     error
}

func (f *fakeJournal) Record(_ context.Context, d types.Divergence) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, d)
	return nil
}

type fakePublisher struct {
	arns     []string
	payloads [][]byte
}

func (f *fakePublisher) PublishRaw(_ context.Context, arn string, payload []byte) error {
	f.arns = append(f.arns, arn)
	f.payloads = append(f.payloads, payload)
	return nil
}
