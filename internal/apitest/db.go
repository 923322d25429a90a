package apitest

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"library-client/internal/models"
	"library-client/internal/shared/utils"
)

// node names one row.
type node struct {
	Model models.Model
	ID    int64
}

func nodeOf(e models.Entity) node {
	return node{Model: e.EntityModel(), ID: e.EntityID()}
}

// link is an unordered association; a is the model that sorts first.
type link struct {
	a, b node
}

func linkOf(x, y node) link {
	if y.Model < x.Model {
		x, y = y, x
	}
	return link{a: x, b: y}
}

// Filter narrows a list read.
type Filter struct {
	Active bool
	// Name matches names, or usernames for Users, ignoring case and accents.
	Name   string
	Limit  int // 0 means no limit
	Offset int
}

// With selects the relations expanded on read.
type With struct {
	Authors bool
	Library bool
	Series  bool
	Stories bool
	Volumes bool
}

// DB is the in-memory catalog behind Server.
type DB struct {
	mu        sync.RWMutex
	nextID    int64
	rows      map[models.Model]map[int64]models.Entity
	links     map[link]bool // value is the principal flag of author links
	passwords map[int64][]byte
	revoked   map[string]bool
	cost      int
}

func NewDB(bcryptCost int) *DB {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	db := &DB{
		nextID:    1,
		rows:      make(map[models.Model]map[int64]models.Entity),
		links:     make(map[link]bool),
		passwords: make(map[int64][]byte),
		revoked:   make(map[string]bool),
		cost:      bcryptCost,
	}
	for _, m := range []models.Model{models.ModelAuthor, models.ModelLibrary, models.ModelSeries, models.ModelStory, models.ModelUser, models.ModelVolume} {
		db.rows[m] = make(map[int64]models.Entity)
	}
	return db
}

// List returns the rows of model in libraryID (ignored for global models).
func (db *DB) List(model models.Model, libraryID int64, f Filter, w With) ([]models.Entity, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if err := db.checkLibrary(model, libraryID); err != nil {
		return nil, err
	}
	var out []models.Entity
	for _, e := range db.rows[model] {
		if owned(model) && e.EntityLibraryID() != libraryID {
			continue
		}
		out = append(out, e)
	}
	return db.page(model, out, f, w), nil
}

// Children returns the rows of child linked to parent.
func (db *DB) Children(parent node, libraryID int64, child models.Model, f Filter, w With) ([]models.Entity, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if !models.Associable(parent.Model, child) {
		return nil, ErrNotAssociable
	}
	if _, err := db.get(parent.Model, libraryID, parent.ID); err != nil {
		return nil, err
	}
	return db.page(child, db.linked(parent, child), f, w), nil
}

// Get returns one row with the requested relations.
func (db *DB) Get(model models.Model, libraryID, id int64, w With) (models.Entity, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	e, err := db.get(model, libraryID, id)
	if err != nil {
		return nil, err
	}
	return db.expand(e, w), nil
}

// Exact finds the row whose unique key matches probe's.
func (db *DB) Exact(model models.Model, libraryID int64, probe models.Entity) (models.Entity, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if err := db.checkLibrary(model, libraryID); err != nil {
		return nil, err
	}
	if e, ok := db.find(model, libraryID, uniqueKey(probe)); ok {
		return e, nil
	}
	return nil, ErrNotFound
}

// Insert stores e under a new id. A User carrying a password gets it
// hashed and the plain text dropped.
func (db *DB) Insert(libraryID int64, e models.Entity) (models.Entity, error) {
	var hash []byte
	if u, ok := e.(models.User); ok && u.Password != nil {
		h, err := bcrypt.GenerateFromPassword([]byte(*u.Password), db.cost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	model := e.EntityModel()
	if err := db.checkLibrary(model, libraryID); err != nil {
		return nil, err
	}
	if _, taken := db.find(model, libraryID, uniqueKey(e)); taken {
		return nil, ErrNotUnique
	}

	id := db.nextID
	db.nextID++
	row := assign(e, id, libraryID)
	db.rows[model][id] = row
	if hash != nil {
		db.passwords[id] = hash
	}
	return row, nil
}

// Update replaces the row id with e.
func (db *DB) Update(libraryID, id int64, e models.Entity) (models.Entity, error) {
	var hash []byte
	if u, ok := e.(models.User); ok && u.Password != nil && *u.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(*u.Password), db.cost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	model := e.EntityModel()
	if _, err := db.get(model, libraryID, id); err != nil {
		return nil, err
	}
	if other, taken := db.find(model, libraryID, uniqueKey(e)); taken && other.EntityID() != id {
		return nil, ErrNotUnique
	}

	if model == models.ModelLibrary {
		libraryID = id
	}
	row := assign(e, id, libraryID)
	db.rows[model][id] = row
	if hash != nil {
		db.passwords[id] = hash
	}
	return row, nil
}

// Delete removes a row and its links. Deleting a Library removes what it owns.
func (db *DB) Delete(model models.Model, libraryID, id int64) (models.Entity, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, err := db.get(model, libraryID, id)
	if err != nil {
		return nil, err
	}
	if model == models.ModelLibrary {
		for m, rows := range db.rows {
			if !owned(m) {
				continue
			}
			for rid, row := range rows {
				if row.EntityLibraryID() == id {
					db.remove(node{Model: m, ID: rid})
				}
			}
		}
	}
	db.remove(node{Model: model, ID: id})
	return e, nil
}

// Link associates child with parent. Principal only applies to Authors.
func (db *DB) Link(parent, child node, libraryID int64, principal bool) (models.Entity, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !models.Associable(parent.Model, child.Model) {
		return nil, ErrNotAssociable
	}
	if _, err := db.get(parent.Model, libraryID, parent.ID); err != nil {
		return nil, err
	}
	e, err := db.get(child.Model, libraryID, child.ID)
	if err != nil {
		return nil, err
	}
	db.links[linkOf(parent, child)] = principal
	return e, nil
}

// Unlink removes the association of child with parent.
func (db *DB) Unlink(parent, child node, libraryID int64) (models.Entity, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !models.Associable(parent.Model, child.Model) {
		return nil, ErrNotAssociable
	}
	e, err := db.get(child.Model, libraryID, child.ID)
	if err != nil {
		return nil, err
	}
	key := linkOf(parent, child)
	if _, ok := db.links[key]; !ok {
		return nil, ErrNotLinked
	}
	delete(db.links, key)
	return e, nil
}

// Authenticate checks a password grant.
func (db *DB) Authenticate(username, password string) (models.User, error) {
	db.mu.RLock()
	e, ok := db.find(models.ModelUser, models.Unpersisted, utils.Fold(username))
	var hash []byte
	if ok {
		hash = db.passwords[e.EntityID()]
	}
	db.mu.RUnlock()

	if !ok || hash == nil {
		return models.User{}, ErrInvalidGrant
	}
	u := e.(models.User)
	if !u.Active {
		return models.User{}, ErrInvalidGrant
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return models.User{}, ErrInvalidGrant
	}
	return u, nil
}

// UserByName returns an active User.
func (db *DB) UserByName(username string) (models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	e, ok := db.find(models.ModelUser, models.Unpersisted, utils.Fold(username))
	if !ok || !e.(models.User).Active {
		return models.User{}, ErrNotFound
	}
	return e.(models.User), nil
}

func (db *DB) Revoke(token string) {
	db.mu.Lock()
	db.revoked[token] = true
	db.mu.Unlock()
}

// IsRevoked implements middleware.Revoked.
func (db *DB) IsRevoked(token string) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.revoked[token]
}

func (db *DB) checkLibrary(model models.Model, libraryID int64) error {
	if !owned(model) {
		return nil
	}
	if _, ok := db.rows[models.ModelLibrary][libraryID]; !ok {
		return ErrLibraryAbsent
	}
	return nil
}

func (db *DB) get(model models.Model, libraryID, id int64) (models.Entity, error) {
	rows, ok := db.rows[model]
	if !ok {
		return nil, ErrUnsupportedPath
	}
	if err := db.checkLibrary(model, libraryID); err != nil {
		return nil, err
	}
	e, ok := rows[id]
	if !ok || (owned(model) && e.EntityLibraryID() != libraryID) {
		return nil, ErrNotFound
	}
	return e, nil
}

func (db *DB) find(model models.Model, libraryID int64, key string) (models.Entity, bool) {
	for _, e := range db.rows[model] {
		if owned(model) && e.EntityLibraryID() != libraryID {
			continue
		}
		if uniqueKey(e) == key {
			return e, true
		}
	}
	return nil, false
}

func (db *DB) remove(n node) {
	delete(db.rows[n.Model], n.ID)
	delete(db.passwords, n.ID)
	for l := range db.links {
		if l.a == n || l.b == n {
			delete(db.links, l)
		}
	}
}

// linked returns the rows of model associated with n. Authors carry the
// principal flag of their link.
func (db *DB) linked(n node, model models.Model) []models.Entity {
	var out []models.Entity
	for l, principal := range db.links {
		var other node
		switch {
		case l.a == n:
			other = l.b
		case l.b == n:
			other = l.a
		default:
			continue
		}
		if other.Model != model {
			continue
		}
		e, ok := db.rows[model][other.ID]
		if !ok {
			continue
		}
		if a, ok := e.(models.Author); ok {
			e = withPrincipal(a, principal)
		}
		out = append(out, e)
	}
	return sortEntities(model, out)
}

func (db *DB) owns(libraryID int64, model models.Model) []models.Entity {
	var out []models.Entity
	for _, e := range db.rows[model] {
		if e.EntityLibraryID() == libraryID {
			out = append(out, e)
		}
	}
	return sortEntities(model, out)
}

func (db *DB) page(model models.Model, list []models.Entity, f Filter, w With) []models.Entity {
	out := make([]models.Entity, 0, len(list))
	for _, e := range sortEntities(model, list) {
		if f.Active && !active(e) {
			continue
		}
		if f.Name != "" && !utils.Contains(searchText(e), f.Name) {
			continue
		}
		out = append(out, e)
	}

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			out = out[:0]
		} else {
			out = out[f.Offset:]
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	for i := range out {
		out[i] = db.expand(out[i], w)
	}
	return out
}

func (db *DB) library(id int64) *models.Library {
	e, ok := db.rows[models.ModelLibrary][id]
	if !ok {
		return nil
	}
	l := e.(models.Library)
	return &l
}

// expand fills the nested relations selected by w.
func (db *DB) expand(e models.Entity, w With) models.Entity {
	n := nodeOf(e)
	switch v := e.(type) {
	case models.Author:
		if w.Library {
			v.Library = db.library(v.LibraryID)
		}
		if w.Series {
			v.Series = typed[models.Series](db.linked(n, models.ModelSeries))
		}
		if w.Stories {
			v.Stories = typed[models.Story](db.linked(n, models.ModelStory))
		}
		if w.Volumes {
			v.Volumes = typed[models.Volume](db.linked(n, models.ModelVolume))
		}
		return v
	case models.Library:
		if w.Authors {
			v.Authors = typed[models.Author](db.owns(v.ID, models.ModelAuthor))
		}
		if w.Series {
			v.Series = typed[models.Series](db.owns(v.ID, models.ModelSeries))
		}
		if w.Stories {
			v.Stories = typed[models.Story](db.owns(v.ID, models.ModelStory))
		}
		if w.Volumes {
			v.Volumes = typed[models.Volume](db.owns(v.ID, models.ModelVolume))
		}
		return v
	case models.Series:
		if w.Library {
			v.Library = db.library(v.LibraryID)
		}
		if w.Authors {
			v.Authors = typed[models.Author](db.linked(n, models.ModelAuthor))
		}
		if w.Stories {
			v.Stories = typed[models.Story](db.linked(n, models.ModelStory))
		}
		return v
	case models.Story:
		if w.Library {
			v.Library = db.library(v.LibraryID)
		}
		if w.Authors {
			v.Authors = typed[models.Author](db.linked(n, models.ModelAuthor))
		}
		if w.Series {
			v.Series = typed[models.Series](db.linked(n, models.ModelSeries))
		}
		if w.Volumes {
			v.Volumes = typed[models.Volume](db.linked(n, models.ModelVolume))
		}
		return v
	case models.Volume:
		if w.Library {
			v.Library = db.library(v.LibraryID)
		}
		if w.Authors {
			v.Authors = typed[models.Author](db.linked(n, models.ModelAuthor))
		}
		if w.Stories {
			v.Stories = typed[models.Story](db.linked(n, models.ModelStory))
		}
		return v
	}
	return e
}
