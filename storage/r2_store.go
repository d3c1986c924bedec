package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Dosada05/tournament-client/models"
	"github.com/Dosada05/tournament-client/utils"
	"github.com/Dosada05/tournament-client/voting"
)

type CloudflareR2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
}

// objectAPI is the subset of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// R2Store keeps vote markers and summaries as objects in a Cloudflare R2 bucket.
type R2Store struct {
	s3Client   objectAPI
	bucketName string
}

func NewCloudflareR2Store(ctx context.Context, cfg CloudflareR2Config) (*R2Store, error) {
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.BucketName == "" {
		return nil, errors.New("invalid Cloudflare R2 configuration: all fields are required")
	}

	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:           fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID),
			SigningRegion: "auto",
		}, nil
	})

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	return newR2Store(s3.NewFromConfig(sdkCfg), cfg.BucketName), nil
}

func newR2Store(client objectAPI, bucket string) *R2Store {
	return &R2Store{s3Client: client, bucketName: bucket}
}

func summaryKey(tournamentID int64) string {
	return "summaries/" + strconv.FormatInt(tournamentID, 10) + ".txt"
}

func markerKey(tournamentID int64, voter string) string {
	return utils.VoteMarkerKey(tournamentID, voter) + ".json"
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}

func isPreconditionFailed(err error) bool {
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusPreconditionFailed
}

// get returns nil data without error when the object does not exist.
func (s *R2Store) get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get object from R2 (key: %s): %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object from R2 (key: %s): %w", key, err)
	}
	return data, nil
}

func (s *R2Store) GetVote(ctx context.Context, tournamentID int64, voter string) (*models.VoteMarker, error) {
	data, err := s.get(ctx, markerKey(tournamentID, voter))
	if err != nil || data == nil {
		return nil, err
	}
	var m models.VoteMarker
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("corrupt vote marker for tournament %d: %w", tournamentID, err)
	}
	return &m, nil
}

// PutVote writes the marker only if no object exists under its key.
func (s *R2Store) PutVote(ctx context.Context, marker models.VoteMarker) error {
	key := markerKey(marker.TournamentID, marker.Voter)
	marker.Voter = utils.HashIdentity(marker.Voter)

	body, err := json.Marshal(marker)
	if err != nil {
		return err
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		if isPreconditionFailed(err) {
			return voting.ErrMarkerExists
		}
		return fmt.Errorf("failed to upload vote marker to R2 (key: %s): %w", key, err)
	}
	return nil
}

func (s *R2Store) GetSummary(ctx context.Context, tournamentID int64) (string, bool, error) {
	data, err := s.get(ctx, summaryKey(tournamentID))
	if err != nil || data == nil {
		return "", false, err
	}
	return string(data), true, nil
}

func (s *R2Store) PutSummary(ctx context.Context, tournamentID int64, text string) error {
	key := summaryKey(tournamentID)
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader([]byte(text)),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload summary to R2 (key: %s): %w", key, err)
	}
	return nil
}
