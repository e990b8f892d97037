package database

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestObjectSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)

	docs := []ObjectDoc{
		{ID: 1, Parent: "room", Data: []byte(`{"name":"And so it begins..."}`)},
		{ID: 2, Parent: "player", Data: []byte(`{"name":"Bob","location_id":1}`)},
		{ID: 3, Parent: "exit", Data: []byte(`{"name":"north","destination_id":1}`)},
	}
	for _, doc := range docs {
		if err := db.SaveObject(doc); err != nil {
			t.Fatalf("SaveObject(%d) error = %v", doc.ID, err)
		}
	}

	loaded, err := db.LoadObjects()
	if err != nil {
		t.Fatalf("LoadObjects() error = %v", err)
	}
	if len(loaded) != len(docs) {
		t.Fatalf("LoadObjects() returned %d docs, want %d", len(loaded), len(docs))
	}
	for i, doc := range loaded {
		if doc.ID != docs[i].ID {
			t.Errorf("doc %d: id = %d, want %d (order should follow id)", i, doc.ID, docs[i].ID)
		}
		if doc.Parent != docs[i].Parent {
			t.Errorf("doc %d: parent = %q, want %q", i, doc.Parent, docs[i].Parent)
		}
		if string(doc.Data) != string(docs[i].Data) {
			t.Errorf("doc %d: data = %s, want %s", i, doc.Data, docs[i].Data)
		}
	}
}

func TestSaveObjectOverwrites(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveObject(ObjectDoc{ID: 5, Parent: "thing", Data: []byte(`{"name":"rock"}`)}); err != nil {
		t.Fatalf("SaveObject() error = %v", err)
	}
	if err := db.SaveObject(ObjectDoc{ID: 5, Parent: "thing", Data: []byte(`{"name":"pebble"}`)}); err != nil {
		t.Fatalf("SaveObject() second save error = %v", err)
	}

	doc, err := db.LoadObject(5)
	if err != nil {
		t.Fatalf("LoadObject() error = %v", err)
	}
	if string(doc.Data) != `{"name":"pebble"}` {
		t.Errorf("data after overwrite = %s, want updated record", doc.Data)
	}

	count, err := db.CountObjects()
	if err != nil {
		t.Fatalf("CountObjects() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountObjects() = %d, want 1", count)
	}
}

func TestDeleteObject(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveObject(ObjectDoc{ID: 7, Parent: "thing", Data: []byte(`{}`)}); err != nil {
		t.Fatalf("SaveObject() error = %v", err)
	}

	exists, err := db.ObjectExists(7)
	if err != nil {
		t.Fatalf("ObjectExists() error = %v", err)
	}
	if !exists {
		t.Fatal("ObjectExists(7) = false before delete, want true")
	}

	if err := db.DeleteObject(7); err != nil {
		t.Fatalf("DeleteObject() error = %v", err)
	}

	exists, err = db.ObjectExists(7)
	if err != nil {
		t.Fatalf("ObjectExists() error = %v", err)
	}
	if exists {
		t.Error("ObjectExists(7) = true after delete, want false")
	}

	// Deleting a missing id is not an error.
	if err := db.DeleteObject(7); err != nil {
		t.Errorf("DeleteObject() on missing id error = %v, want nil", err)
	}
}

func TestCreateAccount(t *testing.T) {
	db := openTestDB(t)

	account, err := db.CreateAccount("Bob", "hunter2", "bob@example.com")
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if account.Username != "Bob" {
		t.Errorf("username = %q, want %q", account.Username, "Bob")
	}
	if account.PasswordHash == "hunter2" {
		t.Error("password stored in plaintext")
	}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "hunter2"},
		{"whitespace username", "   ", "hunter2"},
		{"short password", "alice", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.CreateAccount(tt.username, tt.password, ""); err == nil {
				t.Error("CreateAccount() error = nil, want error")
			}
		})
	}
}

func TestCreateAccountDuplicateCaseInsensitive(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.CreateAccount("Bob", "hunter2", ""); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	for _, username := range []string{"Bob", "bob", "BOB"} {
		if _, err := db.CreateAccount(username, "hunter2", ""); !errors.Is(err, ErrAccountExists) {
			t.Errorf("CreateAccount(%q) error = %v, want ErrAccountExists", username, err)
		}
	}
}

func TestGetAccountCaseInsensitive(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.CreateAccount("Bob", "hunter2", ""); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	account, err := db.GetAccount("bOb")
	if err != nil {
		t.Fatalf("GetAccount(bOb) error = %v", err)
	}
	if account.Username != "Bob" {
		t.Errorf("username = %q, want stored casing %q", account.Username, "Bob")
	}

	if _, err := db.GetAccount("nobody"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("GetAccount(nobody) error = %v, want ErrAccountNotFound", err)
	}
}

func TestValidateLogin(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.CreateAccount("Bob", "hunter2", ""); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	account, err := db.ValidateLogin("bob", "hunter2")
	if err != nil {
		t.Fatalf("ValidateLogin() error = %v", err)
	}
	if account.Username != "Bob" {
		t.Errorf("username = %q, want %q", account.Username, "Bob")
	}

	if _, err := db.ValidateLogin("bob", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("ValidateLogin() with bad password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := db.ValidateLogin("nobody", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("ValidateLogin() with unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestSetControllingObject(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.CreateAccount("Bob", "hunter2", ""); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	if err := db.SetControllingObject("bob", 42); err != nil {
		t.Fatalf("SetControllingObject() error = %v", err)
	}

	account, err := db.GetAccount("Bob")
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if account.ControllingObjectID != 42 {
		t.Errorf("controlling object = %d, want 42", account.ControllingObjectID)
	}

	if err := db.SetControllingObject("nobody", 42); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("SetControllingObject(nobody) error = %v, want ErrAccountNotFound", err)
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{"sqlite passthrough", &SQLiteDialect{}, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{"postgres numbering", &PostgresDialect{}, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{"no placeholders", &PostgresDialect{}, "SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rebind(tt.dialect, tt.query); got != tt.want {
				t.Errorf("rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}
