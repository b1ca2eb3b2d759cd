package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"learnhub/internal/common"
	"learnhub/internal/domain/model"
	"learnhub/internal/domain/repository"
)

// CatalogService serves the read-mostly course, book and test
// catalogs. Tests are immutable once created as far as submissions are
// concerned.
type CatalogService struct {
	testRepo   repository.TestRepository
	courseRepo repository.CourseRepository
	bookRepo   repository.BookRepository
	db         *sql.DB // For transactions
}

func NewCatalogService(
	testRepo repository.TestRepository,
	courseRepo repository.CourseRepository,
	bookRepo repository.BookRepository,
	db *sql.DB,
) *CatalogService {
	return &CatalogService{
		testRepo:   testRepo,
		courseRepo: courseRepo,
		bookRepo:   bookRepo,
		db:         db,
	}
}

type CreateTestRequest struct {
	CourseID         *string          `json:"course_id,omitempty"`
	CourseTitle      string           `json:"course_title"`
	Title            string           `json:"title"`
	TimeLimitMinutes int              `json:"time_limit_minutes"`
	PassingScore     int              `json:"passing_score"`
	Questions        []model.Question `json:"questions"`
}

// CreateTest validates and persists a test with its questions in one
// transaction. The correct-answer-in-options invariant is checked
// here, at write time, never at scoring time.
func (s *CatalogService) CreateTest(ctx context.Context, req CreateTestRequest) (*model.Test, error) {
	test := &model.Test{
		ID:               uuid.NewString(),
		CourseID:         req.CourseID,
		CourseTitle:      req.CourseTitle,
		Title:            req.Title,
		TimeLimitMinutes: req.TimeLimitMinutes,
		PassingScore:     req.PassingScore,
		Questions:        req.Questions,
	}
	if err := test.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.testRepo.CreateTest(ctx, tx, test); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return test, nil
}

func (s *CatalogService) ListTests(ctx context.Context) ([]model.Test, error) {
	return s.testRepo.ListTests(ctx)
}

type CreateCourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *CatalogService) CreateCourse(ctx context.Context, req CreateCourseRequest) (*model.Course, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("course title is required: %w", common.ErrValidation)
	}
	course := &model.Course{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CatalogService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return s.courseRepo.List(ctx)
}

func (s *CatalogService) GetCourse(ctx context.Context, courseSlug string) (*model.Course, error) {
	return s.courseRepo.FindBySlug(ctx, courseSlug)
}

type CreateBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	PdfURL      string `json:"pdf_url"`
}

func (s *CatalogService) CreateBook(ctx context.Context, req CreateBookRequest) (*model.Book, error) {
	if req.Title == "" || req.Author == "" {
		return nil, fmt.Errorf("book title and author are required: %w", common.ErrValidation)
	}
	book := &model.Book{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		PdfURL:      req.PdfURL,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *CatalogService) ListBooks(ctx context.Context) ([]model.Book, error) {
	return s.bookRepo.List(ctx)
}

func (s *CatalogService) GetBook(ctx context.Context, id string) (*model.Book, error) {
	return s.bookRepo.FindByID(ctx, id)
}
