/*
Package ports defines the driven ports (interfaces) used by the validation pipeline.

These interfaces decouple the pipeline from concrete backends, so the same
pipeline records outcomes in memory, Redis, SQL Server or DynamoDB.

# Key Interfaces

  - ResultStore: persists validation records and lists them back.
  - Locker: serializes work on a key (the uploaded file name) across goroutines or replicas.
*/
package ports
