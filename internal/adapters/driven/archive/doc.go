// Package archive keeps verbatim copies of ingested payloads and analysis
// transcripts, either on the local filesystem or in an S3-compatible bucket.
package archive
