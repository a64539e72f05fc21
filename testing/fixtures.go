// Package testing provides test utilities and database setup for integration tests
package testing

import (
	"fmt"
	"math/rand"

	"github.com/scriptbin/scriptbin/models"
	"github.com/scriptbin/scriptbin/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestScript creates a script with a unique permalink and the given tags
func (tf *TestFixtures) CreateTestScript(tags ...string) (*models.Script, error) {
	n := rand.Intn(900000) + 100000

	script := &models.Script{
		Permalink: fmt.Sprintf("test-script-%d", n),
		Author:    "Jane Tester",
		Title:     fmt.Sprintf("Test Script %d", n),
		Source:    "#!/bin/sh\necho hello\n",
		Tags:      pq.StringArray(tags),
	}

	if err := tf.DB.DB.Create(script).Error; err != nil {
		return nil, fmt.Errorf("failed to create test script: %w", err)
	}
	return script, nil
}

// CreateTestComment attaches a comment to the given script
func (tf *TestFixtures) CreateTestComment(scriptID uint, body string) (*models.Comment, error) {
	comment := &models.Comment{
		ScriptID: scriptID,
		Author:   "Commenter",
		Body:     body,
	}

	if err := tf.DB.DB.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create test comment: %w", err)
	}
	return comment, nil
}

// CreateTestTag creates a tag row with the given usage count
func (tf *TestFixtures) CreateTestTag(name string, count int64) (*models.Tag, error) {
	tag := &models.Tag{
		Name:  name,
		Count: count,
	}

	if err := tf.DB.DB.Create(tag).Error; err != nil {
		return nil, fmt.Errorf("failed to create test tag: %w", err)
	}
	return tag, nil
}

// CreateTestAdmin creates an active admin account with the given password
func (tf *TestFixtures) CreateTestAdmin(username, password string) (*models.Admin, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		UUID:         uuid.New(),
		Username:     username,
		PasswordHash: string(hashed),
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}
	return admin, nil
}
