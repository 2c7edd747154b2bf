package repository

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-xray-sdk-go/xray"
)

// S3PutObjectAPI は LogArchiver が利用する S3 クライアントの操作です
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// LogArchiver はバッチ実行後のログファイルを S3 にアップロードします
type LogArchiver struct {
	bucket string
	client S3PutObjectAPI
}

// NewLogArchiver は新しいLogArchiverを作成します
func NewLogArchiver(client S3PutObjectAPI, bucket string) *LogArchiver {
	return &LogArchiver{bucket: bucket, client: client}
}

// Archive は paths のファイルを s3://<bucket>/<runID>/<ファイル名> にアップロードします
// 存在しないファイルはスキップし、アップロードしたキーを返します
func (a *LogArchiver) Archive(ctx context.Context, runID string, paths ...string) ([]string, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "LogArchiver.Archive")
	defer seg.Close(nil)

	var keys []string
	for _, p := range paths {
		body, err := os.ReadFile(p)
		if os.IsNotExist(err) {
			log.Printf("Skipping archive of %s: file does not exist", p)
			continue
		}
		if err != nil {
			seg.Close(err)
			return keys, fmt.Errorf("failed to read %s: %w", p, err)
		}

		key := path.Join(runID, filepath.Base(p))
		_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			seg.Close(err)
			return keys, fmt.Errorf("failed to upload %s to s3://%s/%s: %w", p, a.bucket, key, err)
		}
		keys = append(keys, key)
	}

	log.Printf("Archived %d log files to s3://%s/%s", len(keys), a.bucket, runID)
	return keys, nil
}
