package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	config "github.com/olusegunak/school_cbt/configs"
	"github.com/olusegunak/school_cbt/database"
	"github.com/olusegunak/school_cbt/models"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// ArchiveReportCard uploads a generated report-card PDF to Cloudinary and
// records the artifact. Skipped silently when CLOUDINARY_URL is not
// configured; failures are logged, never surfaced to the student.
func ArchiveReportCard(studentID uuid.UUID, pdfBytes []byte) {
	cloudinaryURL := config.Config("CLOUDINARY_URL")
	if cloudinaryURL == "" {
		return
	}

	uploadURL, err := uploadToCloudinary(cloudinaryURL, pdfBytes, studentID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload report card to Cloudinary: %v", err)
		return
	}

	artifact := models.ReportArtifact{
		StudentID:   studentID,
		ArtifactURL: uploadURL,
		GeneratedAt: time.Now(),
	}
	if err := database.DB.Create(&artifact).Error; err != nil {
		log.Printf("🔥 Failed to record report artifact for student %s: %v", studentID, err)
		return
	}
	log.Printf("✅ Archived report card for student %s.", studentID)
}

func uploadToCloudinary(cloudinaryURL string, fileBytes []byte, studentID string) (string, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("report_cards/%s_%s", studentID, uuid.New().String()),
		Folder:       "school_cbt_report_cards",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
