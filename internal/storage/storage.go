// Package storage is a disk-backed object store for uploaded documents.
// Keys combine the owning entity's id with a timestamp and the original file
// name, so concurrent uploads of the same file cannot collide. The store
// does not inspect file contents: type and size validation are deliberately
// out of scope.
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Bucket names match the remote layout consumed by the front end.
const (
	BucketLabReports    = "lab-reports"
	BucketPrescriptions = "prescriptions"
)

// StoredObject describes a persisted file.
type StoredObject struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	URL    string `json:"url"`
}

// ObjectStore writes objects under root and serves them at baseURL.
type ObjectStore struct {
	root    string
	baseURL string
	now     func() time.Time
}

// NewObjectStore creates the store, making sure both buckets exist on disk.
func NewObjectStore(root, baseURL string) (*ObjectStore, error) {
	for _, bucket := range []string{BucketLabReports, BucketPrescriptions} {
		if err := os.MkdirAll(filepath.Join(root, bucket), 0o755); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}
	return &ObjectStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/"), now: time.Now}, nil
}

// objectKey builds "{ownerID}/{timestamp}-{filename}".
func (s *ObjectStore) objectKey(ownerID, filename string) string {
	name := filepath.Base(filename)
	name = strings.ReplaceAll(name, string(os.PathSeparator), "-")
	return fmt.Sprintf("%s/%d-%s", ownerID, s.now().UnixMilli(), name)
}

// Save writes the object and returns its key and public URL.
func (s *ObjectStore) Save(bucket, ownerID, filename string, r io.Reader) (*StoredObject, error) {
	key := s.objectKey(ownerID, filename)
	fullPath := filepath.Join(s.root, bucket, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("create object directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("create object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return nil, fmt.Errorf("write object: %w", err)
	}

	return &StoredObject{Bucket: bucket, Key: key, URL: s.PublicURL(bucket, key)}, nil
}

// UploadLabReport stores a lab report under the patient's prefix.
func (s *ObjectStore) UploadLabReport(patientID, filename string, r io.Reader) (*StoredObject, error) {
	return s.Save(BucketLabReports, patientID, filename, r)
}

// UploadPrescriptionDocument stores a prescription document under the
// prescription's prefix.
func (s *ObjectStore) UploadPrescriptionDocument(prescriptionID, filename string, r io.Reader) (*StoredObject, error) {
	return s.Save(BucketPrescriptions, prescriptionID, filename, r)
}

// PublicURL returns the location an object is served from.
func (s *ObjectStore) PublicURL(bucket, key string) string {
	return s.baseURL + "/" + path.Join("files", bucket, key)
}

// Open reads an object back for serving.
func (s *ObjectStore) Open(bucket, key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.root, bucket, filepath.FromSlash(key)))
}
