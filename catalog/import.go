// Package catalog bulk-loads courses from a CSV export.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"innerspark/models"
	courseModels "innerspark/models/course"

	"gorm.io/gorm"
)

// Result counts what an import did
type Result struct {
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

func (r Result) Total() int {
	return r.Inserted + r.Updated + r.Skipped
}

// Import reads rows with the header
// title,description,category,price,mentorName,accessDays,staffEmail,status
// and upserts courses by title and owner. Rows naming an unknown staff email are skipped.
// New courses default to DRAFT.
func Import(db *gorm.DB, r io.Reader) (Result, error) {
	var res Result

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return res, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return res, errors.New("csv file is empty or has only headers")
	}

	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"title", "staffEmail"} {
		if _, ok := headerIndex[required]; !ok {
			return res, fmt.Errorf("missing %q column", required)
		}
	}

	owners := make(map[string]uint)
	for i, row := range records[1:] {
		line := i + 2
		title := getField(row, headerIndex, "title")
		email := strings.ToLower(getField(row, headerIndex, "staffEmail"))
		if title == "" || email == "" {
			res.Skipped++
			continue
		}

		staffID, ok := owners[email]
		if !ok {
			var staff models.User
			err := db.Where("email = ? AND is_deleted = ? AND role IN ?", email, false,
				[]string{models.RoleStaff, models.RoleAdmin}).First(&staff).Error
			if err != nil {
				res.Skipped++
				res.Errors = append(res.Errors, fmt.Sprintf("line %d: no staff account %s", line, email))
				continue
			}
			staffID = staff.ID
			owners[email] = staffID
		}

		course := courseModels.Course{
			Title:       title,
			Description: getField(row, headerIndex, "description"),
			Category:    getField(row, headerIndex, "category"),
			Price:       parseInt(getField(row, headerIndex, "price")),
			MentorName:  getField(row, headerIndex, "mentorName"),
			AccessDays:  int(parseInt(getField(row, headerIndex, "accessDays"))),
			StaffID:     staffID,
			Status:      courseModels.CourseDraft,
		}
		switch status := strings.ToUpper(getField(row, headerIndex, "status")); status {
		case courseModels.CourseDraft, courseModels.CourseArchived:
			course.Status = status
		}
		if course.Price < 0 || course.AccessDays < 0 {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: negative price or access days", line))
			continue
		}

		var existing courseModels.Course
		err := db.Where("title = ? AND staff_id = ? AND is_deleted = ?", title, staffID, false).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&course).Error; err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", line, err))
				continue
			}
			res.Inserted++
			continue
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		// publishing stays a reviewed action, so an import never changes an existing status
		err = db.Model(&existing).Updates(map[string]interface{}{
			"description": course.Description,
			"category":    course.Category,
			"price":       course.Price,
			"mentor_name": course.MentorName,
			"access_days": course.AccessDays,
		}).Error
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		res.Updated++
	}
	return res, nil
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func parseInt(s string) int64 {
	if s == "" {
		return 0
	}
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return val
}
