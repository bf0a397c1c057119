package mocks

import (
	"context"
	"sort"
	"time"

	"github.com/portfolio-review-api/internal/models"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	Accounts    map[string]*models.Account
	CreateError error
	LookupError error
	CreateCalls int
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[string]*models.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Accounts[account.Email] = account
	return nil
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	return m.Accounts[email], nil
}

func (m *MockAccountRepository) GetBySafeEmail(ctx context.Context, safeEmail string) (*models.Account, error) {
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	for _, a := range m.Accounts {
		if a.SafeEmail == safeEmail {
			return a, nil
		}
	}
	return nil, nil
}

func (m *MockAccountRepository) UpdateRole(ctx context.Context, email string, role models.Role) error {
	if account, ok := m.Accounts[email]; ok {
		account.Role = role
	}
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	if m.LookupError != nil {
		return nil, m.LookupError
	}
	accounts := make([]*models.Account, 0, len(m.Accounts))
	for _, a := range m.Accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].LastName != accounts[j].LastName {
			return accounts[i].LastName < accounts[j].LastName
		}
		return accounts[i].FirstName < accounts[j].FirstName
	})
	return accounts, nil
}

func (m *MockAccountRepository) Count(ctx context.Context) (int, error) {
	return len(m.Accounts), nil
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	Comments    []*models.Comment
	CreateError error
	ListError   error
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Comments = append(m.Comments, comment)
	return nil
}

func (m *MockCommentRepository) ListForProfile(ctx context.Context, profileEmail string, sectionName *string) ([]*models.Comment, error) {
	return m.list(profileEmail, sectionName, func(c *models.Comment) bool { return true })
}

func (m *MockCommentRepository) ListAfter(ctx context.Context, profileEmail string, after time.Time, sectionName *string) ([]*models.Comment, error) {
	return m.list(profileEmail, sectionName, func(c *models.Comment) bool {
		return c.Timestamp.After(after)
	})
}

func (m *MockCommentRepository) ListOnOrBefore(ctx context.Context, profileEmail string, cutoff time.Time, sectionName *string) ([]*models.Comment, error) {
	return m.list(profileEmail, sectionName, func(c *models.Comment) bool {
		return !c.Timestamp.After(cutoff)
	})
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	return len(m.Comments), nil
}

func (m *MockCommentRepository) list(profileEmail string, sectionName *string, keep func(*models.Comment) bool) ([]*models.Comment, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	var comments []*models.Comment
	for _, c := range m.Comments {
		if c.ProfileEmail != profileEmail {
			continue
		}
		if sectionName != nil && c.SectionName != *sectionName {
			continue
		}
		if keep(c) {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].Timestamp.After(comments[j].Timestamp)
	})
	return comments, nil
}

// MockWatermarkRepository is a mock implementation of WatermarkRepository
type MockWatermarkRepository struct {
	Watermarks  []*models.Watermark
	CreateError error
	FindError   error
	CreateCalls int
}

func NewMockWatermarkRepository() *MockWatermarkRepository {
	return &MockWatermarkRepository{}
}

func (m *MockWatermarkRepository) Create(ctx context.Context, watermark *models.Watermark) error {
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Watermarks = append(m.Watermarks, watermark)
	return nil
}

func (m *MockWatermarkRepository) Find(ctx context.Context, viewerEmail, profileEmail string, sectionName *string) (*models.Watermark, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	for _, w := range m.Watermarks {
		if w.ViewerEmail == viewerEmail && w.ProfileEmail == profileEmail && sameSection(w.SectionName, sectionName) {
			return w, nil
		}
	}
	return nil, nil
}

func (m *MockWatermarkRepository) SetLastVisited(ctx context.Context, id string, visited time.Time) error {
	for _, w := range m.Watermarks {
		if w.ID == id {
			t := visited
			w.LastVisited = &t
			w.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (m *MockWatermarkRepository) Count(ctx context.Context) (int, error) {
	return len(m.Watermarks), nil
}

// sameSection treats nil as the distinct profile-wide key
func sameSection(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
