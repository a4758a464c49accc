package dynamo

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmarback/BlakeBot-sub002/lib/data"
	"github.com/tmarback/BlakeBot-sub002/lib/storage"
)

// --------------------------------------------------------------------------
// Fake client
// --------------------------------------------------------------------------

// fakeDynamo implements the slice of the DynamoDB API the engine uses,
// backed by in-memory maps. Unoverridden methods panic through the embedded
// interface, which keeps the fake honest about what the engine calls.
type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI

	mu     sync.Mutex
	tables map[string]map[string]map[string]*dynamodb.AttributeValue

	pageSize int // items per scan page; 0 means everything in one page

	createCalls int
	waitCalls   int
	batchSizes  []int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		tables: make(map[string]map[string]map[string]*dynamodb.AttributeValue),
	}
}

func (f *fakeDynamo) table(name *string) (map[string]map[string]*dynamodb.AttributeValue, error) {
	tbl, ok := f.tables[aws.StringValue(name)]
	if !ok {
		return nil, awserr.New(dynamodb.ErrCodeResourceNotFoundException,
			fmt.Sprintf("table %q not found", aws.StringValue(name)), nil)
	}
	return tbl, nil
}

func storedKey(item map[string]*dynamodb.AttributeValue) string {
	return aws.StringValue(item[keyAttribute].S)
}

func (f *fakeDynamo) DescribeTable(in *dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.table(in.TableName); err != nil {
		return nil, err
	}
	return &dynamodb.DescribeTableOutput{
		Table: &dynamodb.TableDescription{
			TableName:   in.TableName,
			TableStatus: aws.String(dynamodb.TableStatusActive),
		},
	}, nil
}

func (f *fakeDynamo) CreateTable(in *dynamodb.CreateTableInput) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := aws.StringValue(in.TableName)
	if _, ok := f.tables[name]; ok {
		return nil, awserr.New(dynamodb.ErrCodeResourceInUseException,
			fmt.Sprintf("table %q already exists", name), nil)
	}
	f.tables[name] = make(map[string]map[string]*dynamodb.AttributeValue)
	f.createCalls++
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeDynamo) WaitUntilTableExists(in *dynamodb.DescribeTableInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waitCalls++
	if _, err := f.table(in.TableName); err != nil {
		return err
	}
	return nil
}

func (f *fakeDynamo) GetItem(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tbl, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	item, ok := tbl[storedKey(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) PutItem(in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tbl, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	key := storedKey(in.Item)
	prev, existed := tbl[key]
	if in.ConditionExpression != nil && existed {
		return nil, awserr.New(dynamodb.ErrCodeConditionalCheckFailedException,
			"the conditional request failed", nil)
	}
	tbl[key] = in.Item
	out := &dynamodb.PutItemOutput{}
	if aws.StringValue(in.ReturnValues) == dynamodb.ReturnValueAllOld && existed {
		out.Attributes = prev
	}
	return out, nil
}

func (f *fakeDynamo) DeleteItem(in *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tbl, err := f.table(in.TableName)
	if err != nil {
		return nil, err
	}
	key := storedKey(in.Key)
	prev, existed := tbl[key]
	delete(tbl, key)
	out := &dynamodb.DeleteItemOutput{}
	if aws.StringValue(in.ReturnValues) == dynamodb.ReturnValueAllOld && existed {
		out.Attributes = prev
	}
	return out, nil
}

func (f *fakeDynamo) ScanPages(in *dynamodb.ScanInput, fn func(*dynamodb.ScanOutput, bool) bool) error {
	f.mu.Lock()
	tbl, err := f.table(in.TableName)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	keys := make([]string, 0, len(tbl))
	for key := range tbl {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	items := make([]map[string]*dynamodb.AttributeValue, 0, len(keys))
	for _, key := range keys {
		item := tbl[key]
		if in.ProjectionExpression != nil {
			item = map[string]*dynamodb.AttributeValue{
				keyAttribute: item[keyAttribute],
			}
		}
		items = append(items, item)
	}
	f.mu.Unlock()

	size := f.pageSize
	if size <= 0 {
		size = len(items) + 1
	}
	for start := 0; ; start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		page := items[start:end]
		last := end == len(items)
		out := &dynamodb.ScanOutput{
			Count: aws.Int64(int64(len(page))),
		}
		if aws.StringValue(in.Select) != dynamodb.SelectCount {
			out.Items = page
		}
		if !fn(out, last) || last {
			return nil
		}
	}
}

func (f *fakeDynamo) BatchWriteItem(in *dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, requests := range in.RequestItems {
		tbl, err := f.table(aws.String(name))
		if err != nil {
			return nil, err
		}
		f.batchSizes = append(f.batchSizes, len(requests))
		for _, request := range requests {
			if request.DeleteRequest != nil {
				delete(tbl, storedKey(request.DeleteRequest.Key))
			}
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func newFakeEngine(fake *fakeDynamo, prefix string) *engineImpl {
	return &engineImpl{svc: fake, prefix: prefix}
}

func TestOpenTableCreatesOnFirstUse(t *testing.T) {
	fake := newFakeDynamo()
	engine := newFakeEngine(fake, "blake-")

	tbl, err := engine.OpenTable("settings")
	require.NoError(t, err)
	assert.Equal(t, "settings", tbl.Name())
	assert.Equal(t, 1, fake.createCalls)
	assert.Equal(t, 1, fake.waitCalls)
	assert.Contains(t, fake.tables, "blake-settings")

	// second open finds the table and skips creation
	_, err = engine.OpenTable("settings")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.createCalls)
	assert.Equal(t, 1, fake.waitCalls)
}

func TestOpenTableLosesCreationRace(t *testing.T) {
	fake := newFakeDynamo()
	engine := newFakeEngine(fake, "")

	// the table appears between the describe and the create
	_, err := fake.CreateTable(&dynamodb.CreateTableInput{
		TableName: aws.String("contested"),
	})
	require.NoError(t, err)
	err = engine.createTable("contested")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.createCalls)
	assert.Equal(t, 1, fake.waitCalls)
}

func TestPutGetDeleteRoundTrip(t *testing.T) {
	fake := newFakeDynamo()
	engine := newFakeEngine(fake, "")

	tbl, err := engine.OpenTable("kv")
	require.NoError(t, err)

	prev, existed, err := tbl.Put("greeting", data.String("hello"))
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, data.Data{}, prev)

	got, ok, err := tbl.Get("greeting")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, data.String("hello"), got)

	prev, existed, err = tbl.Put("greeting", data.String("howdy"))
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, data.String("hello"), prev)

	prev, existed, err = tbl.Delete("greeting")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, data.String("howdy"), prev)

	_, ok, err = tbl.Get("greeting")
	require.NoError(t, err)
	assert.False(t, ok)

	_, existed, err = tbl.Delete("greeting")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestEmptyKeyStoredWithPrefix(t *testing.T) {
	fake := newFakeDynamo()
	engine := newFakeEngine(fake, "")

	tbl, err := engine.OpenTable("roots")
	require.NoError(t, err)

	// the tree root encodes to the empty key, which DynamoDB would reject
	// unprefixed
	_, _, err = tbl.Put("", data.Int(1))
	require.NoError(t, err)
	assert.Contains(t, fake.tables["roots"], keyPrefix)

	got, ok, err := tbl.Get("")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, data.Int(1), got)
}

func TestPutIfAbsentMapsConditionFailure(t *testing.T) {
	fake := newFakeDynamo()
	engine := newFakeEngine(fake, "")

	tbl, err := engine.OpenTable("once")
	require.NoError(t, err)

	inserted, err := tbl.PutIfAbsent("lock", data.Int(1))
	require.NoError(t, err)
	assert.True(t, inserted)

	// the conditional failure is an expected outcome, not an error
	inserted, err = tbl.PutIfAbsent("lock", data.Int(2))
	require.NoError(t, err)
	assert.False(t, inserted)

	got, ok, err := tbl.Get("lock")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, data.Int(1), got)
}

func TestRangeSpansPages(t *testing.T) {
	fake := newFakeDynamo()
	fake.pageSize = 2
	engine := newFakeEngine(fake, "")

	tbl, err := engine.OpenTable("paged")
	require.NoError(t, err)

	want := map[string]data.Data{}
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("item-%d", i)
		want[key] = data.Int(int64(i))
		_, _, err := tbl.Put(key, data.Int(int64(i)))
		require.NoError(t, err)
	}

	got := map[string]data.Data{}
	err = tbl.Range(func(key string, value data.Data) bool {
		got[key] = value
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// stopping early cuts the scan short
	seen := 0
	err = tbl.Range(func(string, data.Data) bool {
		seen++
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)

	n, err := tbl.Len()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestClearBatchesDeletes(t *testing.T) {
	fake := newFakeDynamo()
	fake.pageSize = 17
	engine := newFakeEngine(fake, "")

	tbl, err := engine.OpenTable("bulk")
	require.NoError(t, err)

	for i := 0; i < 60; i++ {
		_, _, err := tbl.Put(fmt.Sprintf("row-%03d", i), data.Boolean(true))
		require.NoError(t, err)
	}

	require.NoError(t, tbl.Clear())

	// 60 keys split at the BatchWriteItem limit of 25
	assert.Equal(t, []int{25, 25, 10}, fake.batchSizes)
	n, err := tbl.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStorageErrorsCarryTheStorageCode(t *testing.T) {
	fake := newFakeDynamo()
	engine := newFakeEngine(fake, "")

	// the engine opened the table, but it has since been dropped
	tbl, err := engine.OpenTable("dropped")
	require.NoError(t, err)
	delete(fake.tables, "dropped")

	_, _, err = tbl.Get("anything")
	require.Error(t, err)
	assert.Equal(t, storage.RetCStorage, storage.CodeOf(err))
}
