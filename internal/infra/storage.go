package infra

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// Storage uploads product images. With an empty bucket it falls back to a
// local uploads/ directory, which keeps development machines off AWS.
type Storage interface {
	Upload(file *multipart.FileHeader) (string, error)
}

type s3Storage struct {
	sess   *session.Session
	bucket string
	region string
	cdnURL string
}

func NewS3Storage(bucket, region, cdnURL string) (Storage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return &s3Storage{sess: sess, bucket: bucket, region: region, cdnURL: cdnURL}, nil
}

func (s *s3Storage) Upload(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	key := fmt.Sprintf("products/%s/%s%s",
		time.Now().Format("2006/01"),
		uuid.NewString(),
		filepath.Ext(file.Filename),
	)

	svc := s3.New(s.sess)
	_, err = svc.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(file.Header.Get("Content-Type")),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", err
	}

	if s.cdnURL != "" {
		return s.cdnURL + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

type localStorage struct {
	dir string
}

// NewLocalStorage stores uploads under dir and serves them from /uploads.
func NewLocalStorage(dir string) Storage {
	return &localStorage{dir: dir}
}

func (s *localStorage) Upload(file *multipart.FileHeader) (string, error) {
	name := uuid.NewString() + filepath.Ext(file.Filename)
	dst := filepath.Join(s.dir, name)
	if err := saveMultipart(file, dst); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
