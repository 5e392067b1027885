package services

import (
	"context"
	"errors"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	"github.com/nishan/applygate/internal/app/models"
	"github.com/nishan/applygate/internal/app/repositories"
	"github.com/nishan/applygate/internal/pkg/apperrors"
)

// In-memory fakes for the repository, mailer and storage interfaces.

type fakeUserRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	user.ID = r.nextID
	r.nextID++
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	*stored = *user
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID int64, hashedPassword string) error {
	user, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.Password = hashedPassword
	return nil
}

func (r *fakeUserRepo) MarkVerified(_ context.Context, userID int64) error {
	user, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.IsVerified = true
	return nil
}

type fakeRefreshToken struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

type fakeTokenRepo struct {
	tokens map[string]*fakeRefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*fakeRefreshToken{}}
}

func (r *fakeTokenRepo) CreateToken(_ context.Context, token string, userID int64, expiryDate time.Time) error {
	r.tokens[token] = &fakeRefreshToken{userID: userID, expiry: expiryDate}
	return nil
}

func (r *fakeTokenRepo) GetTokenByValue(_ context.Context, token string) (int64, time.Time, error) {
	stored, ok := r.tokens[token]
	if !ok {
		return 0, time.Time{}, apperrors.ErrTokenNotFound
	}
	if stored.revoked {
		return 0, time.Time{}, apperrors.ErrTokenRevoked
	}
	if stored.expiry.Before(time.Now()) {
		return 0, time.Time{}, apperrors.ErrTokenExpired
	}
	return stored.userID, stored.expiry, nil
}

func (r *fakeTokenRepo) RevokeToken(_ context.Context, token string) error {
	stored, ok := r.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	stored.revoked = true
	return nil
}

func (r *fakeTokenRepo) RevokeAllUserTokens(_ context.Context, userID int64) error {
	for _, stored := range r.tokens {
		if stored.userID == userID {
			stored.revoked = true
		}
	}
	return nil
}

func (r *fakeTokenRepo) CleanupExpiredTokens(_ context.Context) (int64, error) {
	return 0, nil
}

func (r *fakeTokenRepo) activeTokens(userID int64) int {
	count := 0
	for _, stored := range r.tokens {
		if stored.userID == userID && !stored.revoked {
			count++
		}
	}
	return count
}

type fakeAccountTokenRepo struct {
	tokens []*models.AccountToken
	nextID int64
}

func newFakeAccountTokenRepo() *fakeAccountTokenRepo {
	return &fakeAccountTokenRepo{nextID: 1}
}

func (r *fakeAccountTokenRepo) CreateToken(_ context.Context, userID int64, token string, purpose models.TokenPurpose, expiryDate time.Time) error {
	r.tokens = append(r.tokens, &models.AccountToken{
		ID:         r.nextID,
		UserID:     userID,
		Token:      token,
		Purpose:    purpose,
		ExpiryDate: expiryDate,
		CreatedAt:  time.Now(),
	})
	r.nextID++
	return nil
}

func (r *fakeAccountTokenRepo) GetToken(_ context.Context, userID int64, token string, purpose models.TokenPurpose) (*models.AccountToken, error) {
	for _, stored := range r.tokens {
		if stored.UserID == userID && stored.Token == token && stored.Purpose == purpose {
			return stored, nil
		}
	}
	return nil, apperrors.ErrTokenNotFound
}

func (r *fakeAccountTokenRepo) MarkTokenAsUsed(_ context.Context, tokenID int64) error {
	for _, stored := range r.tokens {
		if stored.ID == tokenID {
			now := time.Now()
			stored.UsedAt = &now
			return nil
		}
	}
	return apperrors.ErrTokenNotFound
}

func (r *fakeAccountTokenRepo) DeleteTokensByUser(_ context.Context, userID int64, purpose models.TokenPurpose) error {
	kept := r.tokens[:0]
	for _, stored := range r.tokens {
		if stored.UserID != userID || stored.Purpose != purpose {
			kept = append(kept, stored)
		}
	}
	r.tokens = kept
	return nil
}

func (r *fakeAccountTokenRepo) DeleteExpiredTokens(_ context.Context) error {
	return nil
}

func (r *fakeAccountTokenRepo) tokensFor(userID int64, purpose models.TokenPurpose) []*models.AccountToken {
	var found []*models.AccountToken
	for _, stored := range r.tokens {
		if stored.UserID == userID && stored.Purpose == purpose {
			found = append(found, stored)
		}
	}
	return found
}

type sentEmail struct {
	kind    string
	toEmail string
	userID  int64
	token   string
}

type fakeMailer struct {
	sent    []sentEmail
	failAll bool
}

func (m *fakeMailer) SendVerificationEmail(toEmail, _ string, userID int64, token string) error {
	if m.failAll {
		return errors.New("mail provider unavailable")
	}
	m.sent = append(m.sent, sentEmail{kind: "verification", toEmail: toEmail, userID: userID, token: token})
	return nil
}

func (m *fakeMailer) SendPasswordResetEmail(toEmail, _ string, userID int64, token string) error {
	if m.failAll {
		return errors.New("mail provider unavailable")
	}
	m.sent = append(m.sent, sentEmail{kind: "reset", toEmail: toEmail, userID: userID, token: token})
	return nil
}

func (m *fakeMailer) SendPasswordChangedEmail(toEmail, _ string) error {
	if m.failAll {
		return errors.New("mail provider unavailable")
	}
	m.sent = append(m.sent, sentEmail{kind: "changed", toEmail: toEmail})
	return nil
}

func (m *fakeMailer) lastSent() *sentEmail {
	if len(m.sent) == 0 {
		return nil
	}
	return &m.sent[len(m.sent)-1]
}

type fakeStorage struct {
	saved      []string
	deleted    []string
	nextID     int
	failSave   bool
	failDelete bool
}

func (s *fakeStorage) SaveFile(fh *multipart.FileHeader, subPath string) (string, error) {
	if s.failSave {
		return "", errors.New("disk full")
	}
	s.nextID++
	path := subPath + "/stored-" + fh.Filename
	s.saved = append(s.saved, path)
	return path, nil
}

func (s *fakeStorage) DeleteFile(filePath string) error {
	if s.failDelete {
		return errors.New("delete failed")
	}
	s.deleted = append(s.deleted, filePath)
	return nil
}

func (s *fakeStorage) GetFullPath(filePath string) string {
	return "/tmp/uploads/" + filePath
}

type fakeApplicantRepo struct {
	applicants map[int64]*models.Applicant
	nextID     int64
	createErr  error
	updateErr  error
	deleteErr  error
}

func newFakeApplicantRepo() *fakeApplicantRepo {
	return &fakeApplicantRepo{applicants: map[int64]*models.Applicant{}, nextID: 1}
}

func (r *fakeApplicantRepo) CreateWithAcademics(_ context.Context, applicant *models.Applicant) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, a := range r.applicants {
		if a.Email == applicant.Email {
			return apperrors.ErrApplicantEmailExists
		}
	}
	applicant.ID = r.nextID
	r.nextID++
	var academicID int64 = 1
	for _, record := range applicant.Academics {
		record.ID = academicID
		record.ApplicantID = applicant.ID
		academicID++
	}
	copied := *applicant
	r.applicants[applicant.ID] = &copied
	return nil
}

func (r *fakeApplicantRepo) GetByID(_ context.Context, id int64) (*models.Applicant, error) {
	applicant, ok := r.applicants[id]
	if !ok {
		return nil, apperrors.ErrApplicantNotFound
	}
	copied := *applicant
	return &copied, nil
}

func (r *fakeApplicantRepo) List(_ context.Context, filter repositories.ApplicantFilter) ([]*models.Applicant, error) {
	var results []*models.Applicant
	for _, applicant := range r.applicants {
		if filter.InterestedCourse != "" && string(applicant.InterestedCourse) != filter.InterestedCourse {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			name := strings.ToLower(applicant.FullName)
			email := strings.ToLower(applicant.Email)
			if !strings.Contains(name, needle) && !strings.Contains(email, needle) {
				continue
			}
		}
		copied := *applicant
		results = append(results, &copied)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID > results[j].ID })
	return results, nil
}

func (r *fakeApplicantRepo) UpdateWithAcademics(_ context.Context, applicant *models.Applicant, academics []*models.AcademicRecord) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.applicants[applicant.ID]
	if !ok {
		return apperrors.ErrApplicantNotFound
	}
	kept := stored.Academics
	*stored = *applicant
	if academics != nil {
		stored.Academics = academics
	} else {
		stored.Academics = kept
	}
	return nil
}

func (r *fakeApplicantRepo) Delete(_ context.Context, id int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.applicants[id]; !ok {
		return apperrors.ErrApplicantNotFound
	}
	delete(r.applicants, id)
	return nil
}

func (r *fakeApplicantRepo) EmailExists(_ context.Context, email string, excludeID int64) (bool, error) {
	for _, applicant := range r.applicants {
		if applicant.Email == email && applicant.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeApplicantRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(r.applicants)), nil
}

func (r *fakeApplicantRepo) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	var count int64
	for _, applicant := range r.applicants {
		if !applicant.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}
