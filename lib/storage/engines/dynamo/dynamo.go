package dynamo

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/pkg/errors"

	"github.com/tmarback/BlakeBot-sub002/lib/data"
	"github.com/tmarback/BlakeBot-sub002/lib/storage"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	keyAttribute   = "k" // partition key attribute
	valueAttribute = "v" // payload attribute

	// DynamoDB rejects empty partition key values, but the tree root path
	// encodes to the empty composite key. Every stored key therefore
	// carries this prefix, stripped again on iteration.
	keyPrefix = "k#"

	// batch delete limit imposed by BatchWriteItem
	deleteBatchSize = 25
)

// --------------------------------------------------------------------------
// Engine
// --------------------------------------------------------------------------

// NewEngine creates a new engine backed by AWS DynamoDB. Credentials come
// from the standard AWS resolution chain (environment, shared config,
// instance role); the load parameters only cover what the chain cannot
// provide.
func NewEngine() storage.Engine {
	return &engineImpl{}
}

type engineImpl struct {
	svc    dynamodbiface.DynamoDBAPI
	prefix string
}

func (e *engineImpl) Type() storage.Implementation {
	return storage.ImplDynamo
}

func (e *engineImpl) LoadParams() []storage.Parameter {
	return []storage.Parameter{
		{
			Name:        "region",
			Description: "AWS region hosting the tables (e.g. us-east-1).",
		},
		{
			Name:        "endpoint",
			Description: "Endpoint override, for local DynamoDB instances.",
			Optional:    true,
		},
		{
			Name:        "table-prefix",
			Description: "Prefix prepended to every physical table name, to namespace multiple deployments in one account.",
			Optional:    true,
		},
	}
}

func (e *engineImpl) Connect(params map[string]string) error {
	cfg := aws.NewConfig().WithRegion(params["region"])
	if endpoint := params["endpoint"]; endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return storage.WrapError(storage.RetCStorage, "dynamo: create session", err)
	}
	e.svc = dynamodb.New(sess)
	e.prefix = params["table-prefix"]
	return nil
}

// OpenTable creates the physical table on first use and waits until it is
// ready to serve.
func (e *engineImpl) OpenTable(name string) (storage.Table, error) {
	physical := e.prefix + name

	_, err := e.svc.DescribeTable(&dynamodb.DescribeTableInput{
		TableName: aws.String(physical),
	})
	if err != nil {
		if !isAWSError(err, dynamodb.ErrCodeResourceNotFoundException) {
			return nil, storage.WrapError(storage.RetCStorage,
				fmt.Sprintf("dynamo: describe table %q", physical), err)
		}
		if err := e.createTable(physical); err != nil {
			return nil, err
		}
	}

	return &dynamoTable{svc: e.svc, name: name, physical: physical}, nil
}

func (e *engineImpl) createTable(physical string) error {
	_, err := e.svc.CreateTable(&dynamodb.CreateTableInput{
		TableName:   aws.String(physical),
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String(keyAttribute),
				AttributeType: aws.String(dynamodb.ScalarAttributeTypeS),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String(keyAttribute),
				KeyType:       aws.String(dynamodb.KeyTypeHash),
			},
		},
	})
	// a concurrent OpenTable may have won the race
	if err != nil && !isAWSError(err, dynamodb.ErrCodeResourceInUseException) {
		return storage.WrapError(storage.RetCStorage,
			fmt.Sprintf("dynamo: create table %q", physical), err)
	}
	if err := e.svc.WaitUntilTableExists(&dynamodb.DescribeTableInput{
		TableName: aws.String(physical),
	}); err != nil {
		return storage.WrapError(storage.RetCStorage,
			fmt.Sprintf("dynamo: wait for table %q", physical), err)
	}
	return nil
}

func (e *engineImpl) Close() error {
	// the SDK client holds no connection state worth releasing
	e.svc = nil
	return nil
}

func isAWSError(err error, code string) bool {
	var ae awserr.Error
	return errors.As(err, &ae) && ae.Code() == code
}

// --------------------------------------------------------------------------
// Table
// --------------------------------------------------------------------------

// dynamoTable is one physical DynamoDB table holding flat key-value items:
// the composite key under keyAttribute (prefixed) and the encoded Data value
// under valueAttribute.
type dynamoTable struct {
	svc      dynamodbiface.DynamoDBAPI
	name     string // logical name, as seen by the Database layer
	physical string // prefixed table name
}

func (t *dynamoTable) Name() string {
	return t.name
}

func (t *dynamoTable) storageError(op string, cause error) error {
	return storage.WrapError(storage.RetCStorage,
		fmt.Sprintf("dynamo: %s in table %q", op, t.physical), cause)
}

func (t *dynamoTable) keyOf(key string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		keyAttribute: {S: aws.String(keyPrefix + key)},
	}
}

// item builds the full item for key and value.
func (t *dynamoTable) item(key string, value data.Data) (map[string]*dynamodb.AttributeValue, error) {
	av, err := encodeAttr(value)
	if err != nil {
		return nil, storage.WrapError(storage.RetCTranslation,
			fmt.Sprintf("dynamo: encode value for table %q", t.physical), err)
	}
	item := t.keyOf(key)
	item[valueAttribute] = av
	return item, nil
}

// decodeItem extracts the Data value from a fetched item.
func (t *dynamoTable) decodeItem(item map[string]*dynamodb.AttributeValue) (data.Data, error) {
	av, ok := item[valueAttribute]
	if !ok {
		return data.Data{}, t.storageError("decode item",
			errors.Errorf("item is missing the %q attribute", valueAttribute))
	}
	d, err := decodeAttr(av)
	if err != nil {
		return data.Data{}, t.storageError("decode item", err)
	}
	return d, nil
}

func (t *dynamoTable) Get(key string) (data.Data, bool, error) {
	out, err := t.svc.GetItem(&dynamodb.GetItemInput{
		TableName:      aws.String(t.physical),
		Key:            t.keyOf(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return data.Data{}, false, t.storageError("get item", err)
	}
	if out.Item == nil {
		return data.Data{}, false, nil
	}
	d, err := t.decodeItem(out.Item)
	if err != nil {
		return data.Data{}, false, err
	}
	return d, true, nil
}

func (t *dynamoTable) Put(key string, value data.Data) (data.Data, bool, error) {
	item, err := t.item(key, value)
	if err != nil {
		return data.Data{}, false, err
	}
	out, err := t.svc.PutItem(&dynamodb.PutItemInput{
		TableName:    aws.String(t.physical),
		Item:         item,
		ReturnValues: aws.String(dynamodb.ReturnValueAllOld),
	})
	if err != nil {
		return data.Data{}, false, t.storageError("put item", err)
	}
	if out.Attributes == nil {
		return data.Data{}, false, nil
	}
	prev, err := t.decodeItem(out.Attributes)
	if err != nil {
		return data.Data{}, false, err
	}
	return prev, true, nil
}

func (t *dynamoTable) PutIfAbsent(key string, value data.Data) (bool, error) {
	item, err := t.item(key, value)
	if err != nil {
		return false, err
	}
	_, err = t.svc.PutItem(&dynamodb.PutItemInput{
		TableName:           aws.String(t.physical),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#k)"),
		ExpressionAttributeNames: map[string]*string{
			"#k": aws.String(keyAttribute),
		},
	})
	if err != nil {
		if isAWSError(err, dynamodb.ErrCodeConditionalCheckFailedException) {
			return false, nil
		}
		return false, t.storageError("put item if absent", err)
	}
	return true, nil
}

func (t *dynamoTable) Delete(key string) (data.Data, bool, error) {
	out, err := t.svc.DeleteItem(&dynamodb.DeleteItemInput{
		TableName:    aws.String(t.physical),
		Key:          t.keyOf(key),
		ReturnValues: aws.String(dynamodb.ReturnValueAllOld),
	})
	if err != nil {
		return data.Data{}, false, t.storageError("delete item", err)
	}
	if out.Attributes == nil {
		return data.Data{}, false, nil
	}
	prev, err := t.decodeItem(out.Attributes)
	if err != nil {
		return data.Data{}, false, err
	}
	return prev, true, nil
}

func (t *dynamoTable) Range(fn func(key string, value data.Data) bool) error {
	var iterErr error
	err := t.svc.ScanPages(&dynamodb.ScanInput{
		TableName:      aws.String(t.physical),
		ConsistentRead: aws.Bool(true),
	}, func(page *dynamodb.ScanOutput, _ bool) bool {
		for _, item := range page.Items {
			keyAV, ok := item[keyAttribute]
			if !ok || keyAV.S == nil {
				iterErr = t.storageError("scan",
					errors.Errorf("item is missing the %q attribute", keyAttribute))
				return false
			}
			key := strings.TrimPrefix(*keyAV.S, keyPrefix)
			value, err := t.decodeItem(item)
			if err != nil {
				iterErr = err
				return false
			}
			if !fn(key, value) {
				return false
			}
		}
		return true
	})
	if err != nil {
		return t.storageError("scan", err)
	}
	return iterErr
}

func (t *dynamoTable) Len() (int, error) {
	count := 0
	err := t.svc.ScanPages(&dynamodb.ScanInput{
		TableName: aws.String(t.physical),
		Select:    aws.String(dynamodb.SelectCount),
	}, func(page *dynamodb.ScanOutput, _ bool) bool {
		if page.Count != nil {
			count += int(*page.Count)
		}
		return true
	})
	if err != nil {
		return 0, t.storageError("count", err)
	}
	return count, nil
}

// Clear scans the key attribute and issues batched deletes. DynamoDB has no
// native truncate, and dropping the table would lose throughput settings.
func (t *dynamoTable) Clear() error {
	var keys []string
	err := t.svc.ScanPages(&dynamodb.ScanInput{
		TableName:            aws.String(t.physical),
		ProjectionExpression: aws.String("#k"),
		ExpressionAttributeNames: map[string]*string{
			"#k": aws.String(keyAttribute),
		},
	}, func(page *dynamodb.ScanOutput, _ bool) bool {
		for _, item := range page.Items {
			if av, ok := item[keyAttribute]; ok && av.S != nil {
				keys = append(keys, *av.S)
			}
		}
		return true
	})
	if err != nil {
		return t.storageError("scan for clear", err)
	}

	for start := 0; start < len(keys); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		requests := make([]*dynamodb.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			requests = append(requests, &dynamodb.WriteRequest{
				DeleteRequest: &dynamodb.DeleteRequest{
					Key: map[string]*dynamodb.AttributeValue{
						keyAttribute: {S: aws.String(key)},
					},
				},
			})
		}
		_, err := t.svc.BatchWriteItem(&dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]*dynamodb.WriteRequest{
				t.physical: requests,
			},
		})
		if err != nil {
			return t.storageError("batch delete", err)
		}
	}
	return nil
}
