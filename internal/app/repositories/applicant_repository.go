package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/nishan/applygate/internal/app/models"
	"github.com/nishan/applygate/internal/db"
	"github.com/nishan/applygate/internal/pkg/apperrors"
	"github.com/nishan/applygate/internal/pkg/dberrors"
	"github.com/nishan/applygate/internal/pkg/logger"
)

// ApplicantFilter narrows the applicant listing
type ApplicantFilter struct {
	InterestedCourse string
	Search           string
}

// IApplicantRepository defines the interface for applicant database operations
type IApplicantRepository interface {
	CreateWithAcademics(ctx context.Context, applicant *models.Applicant) error
	GetByID(ctx context.Context, id int64) (*models.Applicant, error)
	List(ctx context.Context, filter ApplicantFilter) ([]*models.Applicant, error)
	UpdateWithAcademics(ctx context.Context, applicant *models.Applicant, academics []*models.AcademicRecord) error
	Delete(ctx context.Context, id int64) error
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	CountAll(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// ApplicantRepository handles applicant database operations
type ApplicantRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewApplicantRepository creates a new ApplicantRepository
func NewApplicantRepository(database *db.PostgresDB) *ApplicantRepository {
	return &ApplicantRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const applicantColumns = `a.id, a.created_by, u.email, u.full_name,
	a.full_name, a.email, a.phone_number, a.interested_course,
	a.country, a.city, a.state, a.zipcode, a.street,
	a.test_type, a.overall_score, a.reading_score, a.listening_score, a.writing_score, a.speaking_score, a.attended_date,
	a.document, a.created_at, a.updated_at`

func scanApplicant(row pgx.Row) (*models.Applicant, error) {
	var a models.Applicant
	err := row.Scan(
		&a.ID,
		&a.CreatedBy,
		&a.CreatedByEmail,
		&a.CreatedByName,
		&a.FullName,
		&a.Email,
		&a.PhoneNumber,
		&a.InterestedCourse,
		&a.Country,
		&a.City,
		&a.State,
		&a.Zipcode,
		&a.Street,
		&a.TestType,
		&a.OverallScore,
		&a.ReadingScore,
		&a.ListeningScore,
		&a.WritingScore,
		&a.SpeakingScore,
		&a.AttendedDate,
		&a.DocumentPath,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateWithAcademics inserts an applicant and all of its academic records
// in a single transaction. Nothing is persisted when any insert fails.
func (r *ApplicantRepository) CreateWithAcademics(ctx context.Context, applicant *models.Applicant) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		insertSQL, args, err := r.sb.Insert("applicants").
			Columns("created_by", "full_name", "email", "phone_number", "interested_course",
				"country", "city", "state", "zipcode", "street",
				"test_type", "overall_score", "reading_score", "listening_score", "writing_score", "speaking_score",
				"attended_date", "document").
			Values(applicant.CreatedBy, applicant.FullName, applicant.Email, applicant.PhoneNumber, applicant.InterestedCourse,
				applicant.Country, applicant.City, applicant.State, applicant.Zipcode, applicant.Street,
				applicant.TestType, applicant.OverallScore, applicant.ReadingScore, applicant.ListeningScore,
				applicant.WritingScore, applicant.SpeakingScore,
				applicant.AttendedDate, applicant.DocumentPath).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			logger.Error().Err(err).Msg("Error building create applicant SQL")
			return fmt.Errorf("failed to build create applicant query: %w", err)
		}

		err = tx.QueryRow(ctx, insertSQL, args...).Scan(&applicant.ID, &applicant.CreatedAt, &applicant.UpdatedAt)
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, "applicants_email_key") {
				return apperrors.ErrApplicantEmailExists
			}
			logger.Error().Err(err).Str("email", applicant.Email).Msg("Error executing create applicant query")
			return fmt.Errorf("error creating applicant: %w", err)
		}

		return r.insertAcademics(ctx, tx, applicant.ID, applicant.Academics)
	})
}

func (r *ApplicantRepository) insertAcademics(ctx context.Context, tx pgx.Tx, applicantID int64, academics []*models.AcademicRecord) error {
	for _, record := range academics {
		insertSQL, args, err := r.sb.Insert("academics").
			Columns("applicant_id", "degree_level", "degree_title", "institution", "passed_year",
				"course_start_date", "course_end_date", "obtained_mark").
			Values(applicantID, record.DegreeLevel, record.DegreeTitle, record.Institution, record.PassedYear,
				record.StartDate, record.EndDate, record.ObtainedMark).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			logger.Error().Err(err).Msg("Error building create academic SQL")
			return fmt.Errorf("failed to build create academic query: %w", err)
		}

		err = tx.QueryRow(ctx, insertSQL, args...).Scan(&record.ID, &record.CreatedAt)
		if err != nil {
			logger.Error().Err(err).Int64("applicantID", applicantID).Msg("Error executing create academic query")
			return fmt.Errorf("error creating academic record: %w", err)
		}
		record.ApplicantID = applicantID
	}

	return nil
}

// GetByID retrieves an applicant with its academic records and creator info
func (r *ApplicantRepository) GetByID(ctx context.Context, id int64) (*models.Applicant, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM applicants a
		JOIN users u ON u.id = a.created_by
		WHERE a.id = $1
	`, applicantColumns)

	applicant, err := scanApplicant(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicantNotFound
		}
		return nil, fmt.Errorf("error retrieving applicant: %w", err)
	}

	academics, err := r.getAcademics(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	applicant.Academics = academics[id]
	if applicant.Academics == nil {
		applicant.Academics = []*models.AcademicRecord{}
	}

	return applicant, nil
}

// List retrieves applicants matching the filter, newest first
func (r *ApplicantRepository) List(ctx context.Context, filter ApplicantFilter) ([]*models.Applicant, error) {
	builder := r.sb.Select(applicantColumns).
		From("applicants a").
		Join("users u ON u.id = a.created_by").
		OrderBy("a.created_at DESC")

	if filter.InterestedCourse != "" {
		builder = builder.Where(squirrel.Eq{"a.interested_course": filter.InterestedCourse})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(squirrel.Or{
			squirrel.ILike{"a.full_name": pattern},
			squirrel.ILike{"a.email": pattern},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list applicants SQL")
		return nil, fmt.Errorf("failed to build list applicants query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing applicants: %w", err)
	}
	defer rows.Close()

	var applicants []*models.Applicant
	var ids []int64
	for rows.Next() {
		applicant, err := scanApplicant(rows)
		if err != nil {
			return nil, err
		}
		applicants = append(applicants, applicant)
		ids = append(ids, applicant.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		academicsByApplicant, err := r.getAcademics(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, applicant := range applicants {
			applicant.Academics = academicsByApplicant[applicant.ID]
			if applicant.Academics == nil {
				applicant.Academics = []*models.AcademicRecord{}
			}
		}
	}

	return applicants, nil
}

// getAcademics loads academic records for a set of applicants in one query
func (r *ApplicantRepository) getAcademics(ctx context.Context, applicantIDs []int64) (map[int64][]*models.AcademicRecord, error) {
	query, args, err := r.sb.Select("id", "applicant_id", "degree_level", "degree_title", "institution",
		"passed_year", "course_start_date", "course_end_date", "obtained_mark", "created_at").
		From("academics").
		Where(squirrel.Eq{"applicant_id": applicantIDs}).
		OrderBy("degree_level ASC", "passed_year DESC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get academics SQL")
		return nil, fmt.Errorf("failed to build get academics query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving academic records: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]*models.AcademicRecord)
	for rows.Next() {
		var record models.AcademicRecord
		if err := rows.Scan(
			&record.ID,
			&record.ApplicantID,
			&record.DegreeLevel,
			&record.DegreeTitle,
			&record.Institution,
			&record.PassedYear,
			&record.StartDate,
			&record.EndDate,
			&record.ObtainedMark,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result[record.ApplicantID] = append(result[record.ApplicantID], &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateWithAcademics updates an applicant's fields and, when academics is
// non-nil, replaces the whole academic list in the same transaction.
func (r *ApplicantRepository) UpdateWithAcademics(ctx context.Context, applicant *models.Applicant, academics []*models.AcademicRecord) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		updateSQL, args, err := r.sb.Update("applicants").
			Set("full_name", applicant.FullName).
			Set("email", applicant.Email).
			Set("phone_number", applicant.PhoneNumber).
			Set("interested_course", applicant.InterestedCourse).
			Set("country", applicant.Country).
			Set("city", applicant.City).
			Set("state", applicant.State).
			Set("zipcode", applicant.Zipcode).
			Set("street", applicant.Street).
			Set("test_type", applicant.TestType).
			Set("overall_score", applicant.OverallScore).
			Set("reading_score", applicant.ReadingScore).
			Set("listening_score", applicant.ListeningScore).
			Set("writing_score", applicant.WritingScore).
			Set("speaking_score", applicant.SpeakingScore).
			Set("attended_date", applicant.AttendedDate).
			Set("document", applicant.DocumentPath).
			Set("updated_at", time.Now()).
			Where(squirrel.Eq{"id": applicant.ID}).
			ToSql()
		if err != nil {
			logger.Error().Err(err).Msg("Error building update applicant SQL")
			return fmt.Errorf("failed to build update applicant query: %w", err)
		}

		cmdTag, err := tx.Exec(ctx, updateSQL, args...)
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, "applicants_email_key") {
				return apperrors.ErrApplicantEmailExists
			}
			logger.Error().Err(err).Int64("applicantID", applicant.ID).Msg("Error executing update applicant query")
			return fmt.Errorf("error updating applicant: %w", err)
		}

		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrApplicantNotFound
		}

		if academics == nil {
			return nil
		}

		// Wholesale replacement of the academic list
		if _, err := tx.Exec(ctx, `DELETE FROM academics WHERE applicant_id = $1`, applicant.ID); err != nil {
			logger.Error().Err(err).Int64("applicantID", applicant.ID).Msg("Error deleting academic records")
			return fmt.Errorf("error replacing academic records: %w", err)
		}

		return r.insertAcademics(ctx, tx, applicant.ID, academics)
	})
}

// Delete removes an applicant. Academic records go with it via the
// cascading foreign key.
func (r *ApplicantRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Pool.Exec(ctx, `DELETE FROM applicants WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("applicantID", id).Msg("Error executing delete applicant query")
		return fmt.Errorf("error deleting applicant: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrApplicantNotFound
	}

	return nil
}

// EmailExists checks if another applicant already uses this email
func (r *ApplicantRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM applicants WHERE email = $1 AND id != $2)`,
		email, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking applicant email existence: %w", err)
	}

	return exists, nil
}

// CountAll returns the total number of applicants
func (r *ApplicantRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM applicants`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting applicants: %w", err)
	}

	return count, nil
}

// CountCreatedSince returns the number of applicants created at or after
// the given time
func (r *ApplicantRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM applicants WHERE created_at >= $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting recent applicants: %w", err)
	}

	return count, nil
}
