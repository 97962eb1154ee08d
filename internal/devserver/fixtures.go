package devserver

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// AccountFixture is one seeded account.
type AccountFixture struct {
	ID          int64  `yaml:"id"`
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	FullName    string `yaml:"full_name"`
	Role        string `yaml:"role"`
	AvatarURL   string `yaml:"avatar_url"`
	Phone       string `yaml:"phone"`
	StudentCode string `yaml:"student_code"`
	// IDField names the JSON key the profile endpoint uses for the
	// identifier: "id" (default), "userId", or "none" to omit it.
	IDField string `yaml:"id_field"`
}

// MembershipFixture is one seeded borrowing-group membership.
type MembershipFixture struct {
	ID        int64  `yaml:"id"`
	GroupID   int64  `yaml:"group_id"`
	AccountID int64  `yaml:"account_id"`
	Role      string `yaml:"role"`
}

// Fixtures is the seed data of the development backend.
type Fixtures struct {
	Accounts    []AccountFixture    `yaml:"accounts"`
	Memberships []MembershipFixture `yaml:"memberships"`
}

// demoFixtures is used when no fixtures file is configured.
const demoFixtures = `
accounts:
  - id: 1
    email: admin@campus.edu
    password: admin123
    full_name: Lab Administrator
    role: ADMIN
  - id: 2
    email: student@campus.edu
    password: student123
    full_name: Sam Student
    role: STUDENT
    student_code: SE170001
  - id: 3
    email: leader@campus.edu
    password: leader123
    full_name: Lin Leader
    role: STUDENT
    student_code: SE170002
  - id: 4
    email: lecturer@campus.edu
    password: lecturer123
    full_name: Dr. Lee
    role: LECTURER
  - id: 5
    email: academic@campus.edu
    password: academic123
    full_name: Academic Affairs
    role: ACADEMIC
memberships:
  - id: 1
    group_id: 10
    account_id: 2
    role: MEMBER
  - id: 2
    group_id: 10
    account_id: 3
    role: LEADER
`

// DemoFixtures returns the built-in demo data.
func DemoFixtures() *Fixtures {
	f, err := ParseFixtures([]byte(demoFixtures))
	if err != nil {
		panic(fmt.Sprintf("devserver: invalid demo fixtures: %v", err))
	}
	return f
}

// LoadFixtures reads fixtures from a YAML file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	f, err := ParseFixtures(data)
	if err != nil {
		return nil, fmt.Errorf("fixtures %s: %w", path, err)
	}
	return f, nil
}

// ParseFixtures decodes and validates YAML fixtures.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixtures) validate() error {
	seen := make(map[int64]bool)
	emails := make(map[string]bool)
	for i, a := range f.Accounts {
		if a.Email == "" {
			return fmt.Errorf("account %d: email is required", i)
		}
		if a.Password == "" {
			return fmt.Errorf("account %s: password is required", a.Email)
		}
		key := strings.ToLower(a.Email)
		if emails[key] {
			return fmt.Errorf("account %s: duplicate email", a.Email)
		}
		emails[key] = true
		if seen[a.ID] {
			return fmt.Errorf("account %s: duplicate id %d", a.Email, a.ID)
		}
		seen[a.ID] = true
		switch a.IDField {
		case "", "id", "userId", "none":
		default:
			return fmt.Errorf("account %s: unknown id_field %q", a.Email, a.IDField)
		}
	}
	for i, m := range f.Memberships {
		if !seen[m.AccountID] {
			return fmt.Errorf("membership %d: unknown account %d", i, m.AccountID)
		}
	}
	return nil
}

// account is a fixture account with its password hashed.
type account struct {
	AccountFixture
	hash []byte
}

// directory indexes accounts and memberships for the handlers.
type directory struct {
	byEmail     map[string]*account
	byID        map[string]*account
	memberships []MembershipFixture
}

var errBadCredentials = errors.New("invalid email or password")

// newDirectory hashes fixture passwords with bcrypt at the given cost.
func newDirectory(f *Fixtures, cost int) (*directory, error) {
	d := &directory{
		byEmail:     make(map[string]*account, len(f.Accounts)),
		byID:        make(map[string]*account, len(f.Accounts)),
		memberships: f.Memberships,
	}
	for _, a := range f.Accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", a.Email, err)
		}
		acc := &account{AccountFixture: a, hash: hash}
		acc.Password = ""
		d.byEmail[strings.ToLower(a.Email)] = acc
		d.byID[strconv.FormatInt(a.ID, 10)] = acc
	}
	return d, nil
}

// authenticate checks an email/password pair.
func (d *directory) authenticate(email, password string) (*account, error) {
	acc, ok := d.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return nil, errBadCredentials
	}
	return acc, nil
}

// membershipsOf returns the memberships of an account in fixture order.
func (d *directory) membershipsOf(accountID int64) []MembershipFixture {
	var out []MembershipFixture
	for _, m := range d.memberships {
		if m.AccountID == accountID {
			out = append(out, m)
		}
	}
	return out
}
