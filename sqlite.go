package bddlabels

// SQLite index storage.

import (
	"encoding/json"
	"fmt"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sampleRecord struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"index"`
	Image      string
	Mask       string
	Lane       string
	Width      int
	Height     int
	// JSON object.
	Attributes string
	Labels     []labelRecord `gorm:"foreignKey:SampleID"`
}

func (sampleRecord) TableName() string { return "samples" }

type labelRecord struct {
	ID       uint `gorm:"primaryKey"`
	SampleID uint `gorm:"index"`
	// Position within the sample.
	Idx      int
	Class    int  `gorm:"index"`
	CenterX  float64
	CenterY  float64
	Width    float64
	Height   float64
}

func (labelRecord) TableName() string { return "labels" }

// Rows per INSERT. Labels are saved as an association of their samples and take 7 variables
// each, which keeps every statement well below SQLite's 32766 variable limit.
const sqliteBatchSize = 500

func openSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:          logger.Default.LogMode(logger.Silent),
		CreateBatchSize: sqliteBatchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open SQLite index %q: %w", path, err)
	}
	return db, nil
}

func closeSQLite(db *gorm.DB, e *error) {
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil && *e == nil {
		*e = err
	}
}

// WriteSQLite writes db to a new SQLite database at path, replacing any existing file.
func WriteSQLite(path string, db Database) (err error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cannot replace %q: %w", path, err)
	}

	gdb, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer closeSQLite(gdb, &err)

	if err := gdb.AutoMigrate(&sampleRecord{}, &labelRecord{}); err != nil {
		return fmt.Errorf("failed to create the SQLite schema: %w", err)
	}

	records := make([]sampleRecord, len(db))
	for i, s := range db {
		attrs, err := json.Marshal(s.Attributes)
		if err != nil {
			return err
		}
		r := sampleRecord{
			Name:       s.Name,
			Image:      s.Image,
			Mask:       s.Mask,
			Lane:       s.Lane,
			Width:      s.Size.Width,
			Height:     s.Size.Height,
			Attributes: string(attrs),
			Labels:     make([]labelRecord, len(s.Labels)),
		}
		for j, l := range s.Labels {
			r.Labels[j] = labelRecord{
				Idx:     j,
				Class:   l.Class,
				CenterX: l.CenterX,
				CenterY: l.CenterY,
				Width:   l.Width,
				Height:  l.Height,
			}
		}
		records[i] = r
	}
	if len(records) == 0 {
		return nil
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(records, sqliteBatchSize).Error
	})
}

// ReadSQLite reads a database written by WriteSQLite, in the original sample and label order.
func ReadSQLite(path string) (_ Database, err error) {
	if !fileExists(path) {
		return nil, fmt.Errorf("SQLite index %q does not exist", path)
	}
	gdb, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer closeSQLite(gdb, &err)

	var records []sampleRecord
	err = gdb.Preload("Labels", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("idx")
	}).Order("id").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read SQLite index %q: %w", path, err)
	}

	db := make(Database, len(records))
	for i, r := range records {
		s := Sample{
			Name:   r.Name,
			Image:  r.Image,
			Mask:   r.Mask,
			Lane:   r.Lane,
			Size:   ImageSize{Width: r.Width, Height: r.Height},
			Labels: make([]Label, len(r.Labels)),
		}
		if r.Attributes != "" {
			if err := json.Unmarshal([]byte(r.Attributes), &s.Attributes); err != nil {
				return nil, fmt.Errorf("sample %q: invalid attributes: %w", r.Name, err)
			}
		}
		for j, l := range r.Labels {
			s.Labels[j] = Label{
				Class:   l.Class,
				CenterX: l.CenterX,
				CenterY: l.CenterY,
				Width:   l.Width,
				Height:  l.Height,
			}
		}
		db[i] = s
	}
	return db, nil
}
