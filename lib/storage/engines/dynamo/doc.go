// Package dynamo implements the storage.Engine contract on AWS DynamoDB.
// Each table of the Database layer is one physical DynamoDB table (created
// on first use, pay-per-request) holding flat items: the composite string
// key as the partition key and the value encoded recursively into native
// attribute types. Numbers ride in the N attribute as text, so the
// integer/float distinction of the Data model survives unchanged.
//
// Load parameters: "region" (required), "endpoint" (optional, for local
// DynamoDB) and "table-prefix" (optional namespace for physical table
// names). Credentials resolve through the standard AWS chain.
//
// All store-level failures surface as storage errors wrapping the SDK
// error; a missing item is reported as absent, never as an error. Retry and
// backoff stay with the SDK client, which already implements them.
package dynamo
