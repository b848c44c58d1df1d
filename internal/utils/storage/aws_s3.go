package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"path"
	"strings"
	"time"

	"foodies-api/domain"
	"foodies-api/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"
)

var AllowImage = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

var (
	ErrFileTypeNotAllowed = fmt.Errorf("file type not allowed: %w", domain.ErrInvalidInput)
	ErrStorageUnavailable = errors.New("image storage unavailable")
)

const maxUploadSize = 5 << 20

type (
	AwsS3 interface {
		UploadFile(fileName string, file *multipart.FileHeader, folder string, allowTypes ...string) (string, error)
		UpdateFile(objectKey string, file *multipart.FileHeader, allowTypes ...string) (string, error)
		DeleteFile(objectKey string) error
		GetPublicLinkKey(objectKey string) string
		GetObjectKeyFromLink(link string) string
	}

	// ObjectPutter is the subset of the S3 client used here.
	ObjectPutter interface {
		PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
		DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	}

	awsS3 struct {
		client  ObjectPutter
		bucket  string
		baseURL string
		timeout time.Duration
		breaker *gobreaker.CircuitBreaker[any]
	}
)

func NewAwsS3() AwsS3 {
	cfg := utils.Get()

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSS3Region)}
	if cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		panic(fmt.Sprintf("unable to load AWS config for S3: %v", err))
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSS3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSS3Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.AWSS3Bucket, cfg.AWSS3Region)
	if cfg.AWSS3Endpoint != "" {
		baseURL = strings.TrimSuffix(cfg.AWSS3Endpoint, "/") + "/" + cfg.AWSS3Bucket
	}

	return NewAwsS3WithClient(client, cfg.AWSS3Bucket, baseURL)
}

func NewAwsS3WithClient(client ObjectPutter, bucket, baseURL string) AwsS3 {
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "s3",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// a rejected upload says nothing about the health of the bucket
			return err == nil || errors.Is(err, ErrFileTypeNotAllowed)
		},
	})

	return &awsS3{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: 30 * time.Second,
		breaker: breaker,
	}
}

func (s *awsS3) UploadFile(fileName string, file *multipart.FileHeader, folder string, allowTypes ...string) (string, error) {
	objectKey := path.Join(folder, fmt.Sprintf("%s-%s", fileName, uuid.NewString()))
	return s.put(objectKey, file, allowTypes)
}

func (s *awsS3) UpdateFile(objectKey string, file *multipart.FileHeader, allowTypes ...string) (string, error) {
	return s.put(objectKey, file, allowTypes)
}

func (s *awsS3) put(objectKey string, file *multipart.FileHeader, allowTypes []string) (string, error) {
	if file.Size > maxUploadSize {
		return "", fmt.Errorf("%w: file larger than %d bytes", ErrFileTypeNotAllowed, maxUploadSize)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	mtype := mimetype.Detect(data)
	if len(allowTypes) > 0 && !mimetype.EqualsAny(mtype.String(), allowTypes...) {
		return "", fmt.Errorf("%w: %s", ErrFileTypeNotAllowed, mtype.String())
	}
	if path.Ext(objectKey) == "" {
		objectKey += mtype.Extension()
	}

	_, err = s.breaker.Execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		return s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(objectKey),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(mtype.String()),
			ACL:         s3types.ObjectCannedACLPublicRead,
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return objectKey, nil
}

func (s *awsS3) DeleteFile(objectKey string) error {
	_, err := s.breaker.Execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		return s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(objectKey),
		})
	})
	return err
}

func (s *awsS3) GetPublicLinkKey(objectKey string) string {
	return s.baseURL + "/" + objectKey
}

func (s *awsS3) GetObjectKeyFromLink(link string) string {
	if !strings.HasPrefix(link, s.baseURL+"/") {
		parsed, err := url.Parse(link)
		if err != nil {
			return ""
		}
		return strings.TrimPrefix(parsed.Path, "/"+s.bucket+"/")
	}
	return strings.TrimPrefix(link, s.baseURL+"/")
}
