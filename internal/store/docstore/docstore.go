// Package docstore implements store.Store as an in-process document store
// persisted to a single JSON snapshot file.
package docstore

import (
	"context"
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/assettrack/internal/model"
	"github.com/erazemk/assettrack/internal/store"
)

// snapshot is the persisted document.
type snapshot struct {
	NextID      int64                            `json:"next_id"`
	Users       map[int64]model.User             `json:"users"`
	Hashes      map[int64]string                 `json:"password_hashes"`
	Departments map[int64]model.Department       `json:"departments"`
	Assets      map[int64]model.Asset            `json:"assets"`
	Sessions    map[int64]model.InventorySession `json:"sessions"`
	Scans       map[int64]model.InventoryScan    `json:"scans"`
	Settings    map[string]string                `json:"settings"`
	Revoked     map[string]time.Time             `json:"revoked_tokens"`
}

func newSnapshot() *snapshot {
	return &snapshot{
		Users:       map[int64]model.User{},
		Hashes:      map[int64]string{},
		Departments: map[int64]model.Department{},
		Assets:      map[int64]model.Asset{},
		Sessions:    map[int64]model.InventorySession{},
		Scans:       map[int64]model.InventoryScan{},
		Settings:    map[string]string{},
		Revoked:     map[string]time.Time{},
	}
}

func (s *snapshot) clone() *snapshot {
	return &snapshot{
		NextID:      s.NextID,
		Users:       maps.Clone(s.Users),
		Hashes:      maps.Clone(s.Hashes),
		Departments: maps.Clone(s.Departments),
		Assets:      maps.Clone(s.Assets),
		Sessions:    maps.Clone(s.Sessions),
		Scans:       maps.Clone(s.Scans),
		Settings:    maps.Clone(s.Settings),
		Revoked:     maps.Clone(s.Revoked),
	}
}

// fill replaces nil maps left by an older or hand-edited file.
func (s *snapshot) fill() {
	empty := newSnapshot()
	if s.Users == nil {
		s.Users = empty.Users
	}
	if s.Hashes == nil {
		s.Hashes = empty.Hashes
	}
	if s.Departments == nil {
		s.Departments = empty.Departments
	}
	if s.Assets == nil {
		s.Assets = empty.Assets
	}
	if s.Sessions == nil {
		s.Sessions = empty.Sessions
	}
	if s.Scans == nil {
		s.Scans = empty.Scans
	}
	if s.Settings == nil {
		s.Settings = empty.Settings
	}
	if s.Revoked == nil {
		s.Revoked = empty.Revoked
	}
}

func (s *snapshot) nextID() int64 {
	s.NextID++
	return s.NextID
}

// Store is a document-oriented store.Store. Every mutation is applied to a
// copy of the state, persisted, and only then made visible.
type Store struct {
	mu    sync.RWMutex
	path  string
	state *snapshot
}

var _ store.Store = (*Store)(nil)

// Open loads the snapshot at path, or starts empty if it does not exist.
// An empty path keeps the store in memory only.
func Open(path string) (*Store, error) {
	state, err := readSnapshot(path)
	if err != nil {
		return nil, store.StorageErr("reading snapshot", err)
	}
	return &Store{path: path, state: state}, nil
}

// Close is a no-op; every mutation is already on disk.
func (s *Store) Close() error { return nil }

func (s *Store) read(fn func(*snapshot)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

func (s *Store) mutate(op string, fn func(*snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := writeSnapshot(s.path, next); err != nil {
		return store.StorageErr(op, err)
	}
	s.state = next
	return nil
}

func readSnapshot(path string) (*snapshot, error) {
	if path == "" {
		return newSnapshot(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return newSnapshot(), nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return newSnapshot(), nil
	}
	snap := newSnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, err
	}
	snap.fill()
	return snap, nil
}

// writeSnapshot replaces the file atomically through a temporary sibling.
func writeSnapshot(path string, snap *snapshot) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	temp := path + ".tmp"
	if err := os.WriteFile(temp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(temp, path)
}

// Users

func (s *Store) Setup(_ context.Context, username, passwordHash, departmentName string) (*model.User, *model.Department, error) {
	var user model.User
	var dept model.Department
	err := s.mutate("setting up", func(st *snapshot) error {
		if len(st.Users) > 0 {
			return store.ErrAlreadySetUp()
		}
		now := store.Now()
		user = model.User{ID: st.nextID(), Username: username, CreatedAt: now}
		st.Users[user.ID] = user
		st.Hashes[user.ID] = passwordHash
		dept = model.Department{ID: st.nextID(), Name: departmentName, UserID: user.ID, CreatedAt: now}
		st.Departments[dept.ID] = dept
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	user.PasswordHash = passwordHash
	return &user, &dept, nil
}

func (s *Store) CreateUser(_ context.Context, username, passwordHash string) (*model.User, error) {
	var user model.User
	err := s.mutate("creating user", func(st *snapshot) error {
		for _, u := range st.Users {
			if u.Username == username {
				return store.ErrDuplicateUsername(username)
			}
		}
		user = model.User{ID: st.nextID(), Username: username, CreatedAt: store.Now()}
		st.Users[user.ID] = user
		st.Hashes[user.ID] = passwordHash
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.PasswordHash = passwordHash
	return &user, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (*model.User, error) {
	var found *model.User
	s.read(func(st *snapshot) {
		if u, ok := st.Users[id]; ok {
			u.PasswordHash = st.Hashes[id]
			found = &u
		}
	})
	return found, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	var found *model.User
	s.read(func(st *snapshot) {
		for id, u := range st.Users {
			if u.Username == username {
				u.PasswordHash = st.Hashes[id]
				found = &u
				return
			}
		}
	})
	return found, nil
}

func (s *Store) CountUsers(_ context.Context) (int, error) {
	var n int
	s.read(func(st *snapshot) { n = len(st.Users) })
	return n, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, id int64, passwordHash string) error {
	return s.mutate("updating password", func(st *snapshot) error {
		if _, ok := st.Users[id]; !ok {
			return &model.NotFoundError{Kind: "user", ID: id}
		}
		st.Hashes[id] = passwordHash
		return nil
	})
}

// Departments

func (s *Store) CreateDepartment(_ context.Context, name string, userID int64) (*model.Department, error) {
	var dept model.Department
	err := s.mutate("creating department", func(st *snapshot) error {
		if _, ok := st.Users[userID]; !ok {
			return &model.NotFoundError{Kind: "user", ID: userID}
		}
		dept = model.Department{ID: st.nextID(), Name: name, UserID: userID, CreatedAt: store.Now()}
		st.Departments[dept.ID] = dept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (s *Store) GetDepartment(_ context.Context, id int64) (*model.Department, error) {
	var found *model.Department
	s.read(func(st *snapshot) {
		if d, ok := st.Departments[id]; ok {
			found = &d
		}
	})
	return found, nil
}

// GetDepartmentByUser returns the user's first department.
func (s *Store) GetDepartmentByUser(_ context.Context, userID int64) (*model.Department, error) {
	var found *model.Department
	s.read(func(st *snapshot) {
		for _, d := range st.Departments {
			if d.UserID == userID && (found == nil || d.ID < found.ID) {
				found = &d
			}
		}
	})
	return found, nil
}

func (s *Store) DeleteDepartment(_ context.Context, id int64) error {
	return s.mutate("deleting department", func(st *snapshot) error {
		if _, ok := st.Departments[id]; !ok {
			return &model.NotFoundError{Kind: "department", ID: id}
		}
		delete(st.Departments, id)
		for aid, a := range st.Assets {
			if a.DepartmentID == id {
				delete(st.Assets, aid)
			}
		}
		for sid, sess := range st.Sessions {
			if sess.DepartmentID == id {
				deleteSession(st, sid)
			}
		}
		return nil
	})
}

// Assets

func rfidTaken(st *snapshot, code string, except int64) bool {
	for id, a := range st.Assets {
		if id != except && a.RFIDCode == code {
			return true
		}
	}
	return false
}

func (s *Store) CreateAsset(_ context.Context, in model.NewAsset) (*model.Asset, error) {
	var asset model.Asset
	err := s.mutate("creating asset", func(st *snapshot) error {
		if _, ok := st.Departments[in.DepartmentID]; !ok {
			return &model.NotFoundError{Kind: "department", ID: in.DepartmentID}
		}
		if rfidTaken(st, in.RFIDCode, 0) {
			return store.ErrDuplicateRFID(in.RFIDCode)
		}
		now := store.Now()
		asset = model.Asset{
			ID:           st.nextID(),
			Name:         in.Name,
			SerialNumber: in.SerialNumber,
			Quantity:     in.Quantity,
			Location:     in.Location,
			RFIDCode:     in.RFIDCode,
			PhotoRef:     in.PhotoRef,
			DepartmentID: in.DepartmentID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		st.Assets[asset.ID] = asset
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (s *Store) GetAsset(_ context.Context, id int64) (*model.Asset, error) {
	var found *model.Asset
	s.read(func(st *snapshot) {
		if a, ok := st.Assets[id]; ok {
			found = &a
		}
	})
	return found, nil
}

func (s *Store) GetAssetByRFID(_ context.Context, code string) (*model.Asset, error) {
	var found *model.Asset
	s.read(func(st *snapshot) {
		for _, a := range st.Assets {
			if a.RFIDCode == code {
				found = &a
				return
			}
		}
	})
	return found, nil
}

func (s *Store) ListAssets(_ context.Context, departmentID int64) ([]model.Asset, error) {
	return s.filterAssets(departmentID, func(*model.Asset) bool { return true }), nil
}

func (s *Store) SearchAssets(_ context.Context, departmentID int64, query string) ([]model.Asset, error) {
	lower := strings.ToLower(query)
	return s.filterAssets(departmentID, func(a *model.Asset) bool { return a.MatchesQuery(lower) }), nil
}

func (s *Store) filterAssets(departmentID int64, keep func(*model.Asset) bool) []model.Asset {
	assets := []model.Asset{}
	s.read(func(st *snapshot) {
		for _, a := range st.Assets {
			if a.DepartmentID == departmentID && keep(&a) {
				assets = append(assets, a)
			}
		}
	})
	sort.Slice(assets, func(i, j int) bool {
		if !assets[i].CreatedAt.Equal(assets[j].CreatedAt) {
			return assets[i].CreatedAt.After(assets[j].CreatedAt)
		}
		return assets[i].ID > assets[j].ID
	})
	return assets
}

func (s *Store) UpdateAsset(_ context.Context, id int64, u model.AssetUpdate) (*model.Asset, error) {
	var asset model.Asset
	err := s.mutate("updating asset", func(st *snapshot) error {
		a, ok := st.Assets[id]
		if !ok {
			return &model.NotFoundError{Kind: "asset", ID: id}
		}
		if u.RFIDCode != nil && rfidTaken(st, *u.RFIDCode, id) {
			return store.ErrDuplicateRFID(*u.RFIDCode)
		}
		u.Apply(&a)
		a.UpdatedAt = store.Now()
		st.Assets[id] = a
		asset = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (s *Store) DeleteAsset(_ context.Context, id int64) error {
	return s.mutate("deleting asset", func(st *snapshot) error {
		if _, ok := st.Assets[id]; !ok {
			return &model.NotFoundError{Kind: "asset", ID: id}
		}
		delete(st.Assets, id)
		return nil
	})
}

// Sessions

func (s *Store) CreateSession(_ context.Context, name string, departmentID int64) (*model.InventorySession, error) {
	var sess model.InventorySession
	err := s.mutate("creating session", func(st *snapshot) error {
		if _, ok := st.Departments[departmentID]; !ok {
			return &model.NotFoundError{Kind: "department", ID: departmentID}
		}
		now := store.Now()
		sess = model.InventorySession{
			ID:           st.nextID(),
			Name:         name,
			StartedAt:    now,
			DepartmentID: departmentID,
			CreatedAt:    now,
		}
		st.Sessions[sess.ID] = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) GetSession(_ context.Context, id int64) (*model.InventorySession, error) {
	var found *model.InventorySession
	s.read(func(st *snapshot) {
		if sess, ok := st.Sessions[id]; ok {
			found = &sess
		}
	})
	return found, nil
}

func (s *Store) ListSessions(_ context.Context, departmentID int64) ([]model.InventorySession, error) {
	sessions := []model.InventorySession{}
	s.read(func(st *snapshot) {
		for _, sess := range st.Sessions {
			if sess.DepartmentID == departmentID {
				sessions = append(sessions, sess)
			}
		}
	})
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].StartedAt.Equal(sessions[j].StartedAt) {
			return sessions[i].StartedAt.After(sessions[j].StartedAt)
		}
		return sessions[i].ID > sessions[j].ID
	})
	return sessions, nil
}

func (s *Store) DeleteSession(_ context.Context, id int64) error {
	return s.mutate("deleting session", func(st *snapshot) error {
		if _, ok := st.Sessions[id]; !ok {
			return &model.NotFoundError{Kind: "session", ID: id}
		}
		deleteSession(st, id)
		return nil
	})
}

func deleteSession(st *snapshot, id int64) {
	delete(st.Sessions, id)
	for scanID, scan := range st.Scans {
		if scan.SessionID == id {
			delete(st.Scans, scanID)
		}
	}
}

// Scans

func (s *Store) AddScan(_ context.Context, sessionID int64, code string) (*model.InventoryScan, error) {
	var scan model.InventoryScan
	err := s.mutate("recording scan", func(st *snapshot) error {
		if _, ok := st.Sessions[sessionID]; !ok {
			return &model.NotFoundError{Kind: "session", ID: sessionID}
		}
		scan = model.InventoryScan{ID: st.nextID(), SessionID: sessionID, RFIDCode: code, Timestamp: store.Now()}
		st.Scans[scan.ID] = scan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

func (s *Store) ListScans(_ context.Context, sessionID int64) ([]model.InventoryScan, error) {
	scans := []model.InventoryScan{}
	s.read(func(st *snapshot) {
		for _, scan := range st.Scans {
			if scan.SessionID == sessionID {
				scans = append(scans, scan)
			}
		}
	})
	sort.Slice(scans, func(i, j int) bool {
		if !scans[i].Timestamp.Equal(scans[j].Timestamp) {
			return scans[i].Timestamp.Before(scans[j].Timestamp)
		}
		return scans[i].ID < scans[j].ID
	})
	return scans, nil
}

// Settings

const jwtSecretKey = "jwt_secret"

func (s *Store) JWTSecret(_ context.Context) (string, error) {
	var secret string
	s.read(func(st *snapshot) { secret = st.Settings[jwtSecretKey] })
	if secret != "" {
		return secret, nil
	}

	candidate, err := store.NewSecret()
	if err != nil {
		return "", store.StorageErr("generating jwt secret", err)
	}
	err = s.mutate("storing jwt secret", func(st *snapshot) error {
		if existing := st.Settings[jwtSecretKey]; existing != "" {
			secret = existing
			return nil
		}
		st.Settings[jwtSecretKey] = candidate
		secret = candidate
		return nil
	})
	return secret, err
}

func (s *Store) RevokeToken(_ context.Context, jti string, expiresAt time.Time) error {
	return s.mutate("revoking token", func(st *snapshot) error {
		now := store.Now()
		for id, exp := range st.Revoked {
			if exp.Before(now) {
				delete(st.Revoked, id)
			}
		}
		st.Revoked[jti] = expiresAt.UTC()
		return nil
	})
}

func (s *Store) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	var revoked bool
	s.read(func(st *snapshot) { _, revoked = st.Revoked[jti] })
	return revoked, nil
}
