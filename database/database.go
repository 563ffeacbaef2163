package database

import (
	"context"

	"gorm.io/gorm"
)

type Database struct {
	db                    *gorm.DB
	userRepo              *UserRepo
	accountRepo           *AccountRepo
	verificationTokenRepo *VerificationTokenRepo
	projectRepo           *ProjectRepo
	contactRequestRepo    *ContactRequestRepo
	blogPostRepo          *BlogPostRepo
	uploadRepo            *UploadRepo
	eventRepo             *EventRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:                    db,
		userRepo:              NewUserRepo(db),
		accountRepo:           NewAccountRepo(db),
		verificationTokenRepo: NewVerificationTokenRepo(db),
		projectRepo:           NewProjectRepo(db),
		contactRequestRepo:    NewContactRequestRepo(db),
		blogPostRepo:          NewBlogPostRepo(db),
		uploadRepo:            NewUploadRepo(db),
		eventRepo:             NewEventRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) AccountRepo() *AccountRepo {
	return d.accountRepo
}

func (d Database) VerificationTokenRepo() *VerificationTokenRepo {
	return d.verificationTokenRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) ContactRequestRepo() *ContactRequestRepo {
	return d.contactRequestRepo
}

func (d Database) BlogPostRepo() *BlogPostRepo {
	return d.blogPostRepo
}

func (d Database) UploadRepo() *UploadRepo {
	return d.uploadRepo
}

func (d Database) EventRepo() *EventRepo {
	return d.eventRepo
}

// Transaction runs fn against a Database whose repositories share one
// transaction. Returning an error rolls everything back.
func (d Database) Transaction(ctx context.Context, fn func(tx Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
