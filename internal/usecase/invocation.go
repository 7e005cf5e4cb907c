package usecase

import (
	"fmt"
	"regexp"

	"github.com/FreePeak/turso-mcp-server/pkg/db"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// invocation is one parsed tool call. The set of implementations is closed.
type invocation interface {
	tool() Tool
	statement(d db.Dialect) db.Statement
	format(res *db.Result) (string, error)
}

// parseInvocation validates args once and returns the typed input for t
func parseInvocation(t Tool, raw map[string]interface{}, opts Options) (invocation, error) {
	a := arguments{tool: t, raw: raw}

	switch t {
	case ToolExecuteQuery:
		return parseQuery(a, false)
	case ToolExecuteReadOnlyQuery:
		return parseQuery(a, true)
	case ToolListTables:
		return listTables{}, nil
	case ToolDescribeTable:
		return parseDescribeTable(a, opts)
	case ToolCreateTable:
		return parseCreateTable(a, opts)
	case ToolAddConversation:
		return parseAddConversation(a)
	case ToolGetConversations:
		return parseGetConversations(a)
	case ToolAddKnowledge:
		return parseAddKnowledge(a)
	case ToolSearchKnowledge:
		return parseSearchKnowledge(a)
	case ToolAddTask:
		return parseAddTask(a)
	case ToolGetTasks:
		return parseGetTasks(a)
	default:
		return nil, unknownToolError(string(t))
	}
}

type executeQuery struct {
	name  Tool
	query string
	args  []interface{}
}

func parseQuery(a arguments, readOnly bool) (invocation, error) {
	query, ok, err := a.str("query")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, validationError(a.tool, "query is required")
	}
	if readOnly {
		if err := checkReadOnly(a.tool, query); err != nil {
			return nil, err
		}
	}

	params, err := a.params()
	if err != nil {
		return nil, err
	}
	return executeQuery{name: a.tool, query: query, args: params}, nil
}

func (q executeQuery) tool() Tool { return q.name }

func (q executeQuery) statement(db.Dialect) db.Statement {
	return db.Statement{SQL: q.query, Args: q.args}
}

func (q executeQuery) format(res *db.Result) (string, error) {
	return formatJSON(res)
}

type listTables struct{}

func (listTables) tool() Tool { return ToolListTables }

func (listTables) statement(d db.Dialect) db.Statement {
	return d.ListTablesQuery()
}

func (listTables) format(res *db.Result) (string, error) {
	return formatJSON(res)
}

func checkIdentifier(t Tool, name string, opts Options) error {
	if opts.StrictIdentifiers && !identifierPattern.MatchString(name) {
		return validationError(t, "invalid table name: %s", name)
	}
	return nil
}

type describeTable struct {
	table string
}

func parseDescribeTable(a arguments, opts Options) (invocation, error) {
	table, ok, err := a.str("table")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, validationError(a.tool, "table is required")
	}
	if err := checkIdentifier(a.tool, table, opts); err != nil {
		return nil, err
	}
	return describeTable{table: table}, nil
}

func (describeTable) tool() Tool { return ToolDescribeTable }

func (c describeTable) statement(d db.Dialect) db.Statement {
	return d.DescribeTableQuery(c.table)
}

func (describeTable) format(res *db.Result) (string, error) {
	return formatJSON(res)
}

type createTable struct {
	tableName string
	schema    string
}

func parseCreateTable(a arguments, opts Options) (invocation, error) {
	tableName, hasName, err := a.str("tableName")
	if err != nil {
		return nil, err
	}
	schema, hasSchema, err := a.str("schema")
	if err != nil {
		return nil, err
	}
	if !hasName || !hasSchema {
		return nil, validationError(a.tool, "tableName and schema are required")
	}
	if err := checkIdentifier(a.tool, tableName, opts); err != nil {
		return nil, err
	}
	return createTable{tableName: tableName, schema: schema}, nil
}

func (createTable) tool() Tool { return ToolCreateTable }

func (c createTable) statement(db.Dialect) db.Statement {
	return db.Statement{SQL: fmt.Sprintf("CREATE TABLE %s (%s)", c.tableName, c.schema)}
}

func (c createTable) format(*db.Result) (string, error) {
	return fmt.Sprintf("Table %s created successfully", c.tableName), nil
}

type addConversation struct {
	sessionID string
	userID    interface{}
	message   string
	response  interface{}
	context   interface{}
}

func parseAddConversation(a arguments) (invocation, error) {
	sessionID, hasSession, err := a.str("session_id")
	if err != nil {
		return nil, err
	}
	message, hasMessage, err := a.str("message")
	if err != nil {
		return nil, err
	}
	if !hasSession || !hasMessage {
		return nil, validationError(a.tool, "session_id and message are required")
	}

	inv := addConversation{sessionID: sessionID, message: message}
	if inv.userID, err = a.nullableStr("user_id"); err != nil {
		return nil, err
	}
	if inv.response, err = a.nullableStr("response"); err != nil {
		return nil, err
	}
	if inv.context, err = a.nullableStr("context"); err != nil {
		return nil, err
	}
	return inv, nil
}

func (addConversation) tool() Tool { return ToolAddConversation }

func (c addConversation) statement(d db.Dialect) db.Statement {
	return db.Statement{
		SQL:  insertSQL(d, "INSERT INTO conversations (session_id, user_id, message, response, context) VALUES (?, ?, ?, ?, ?)"),
		Args: []interface{}{c.sessionID, c.userID, c.message, c.response, c.context},
	}
}

func (addConversation) format(res *db.Result) (string, error) {
	return formatInserted("Conversation", res)
}

type getConversations struct {
	sessionID string
	limit     int64
}

func parseGetConversations(a arguments) (invocation, error) {
	sessionID, _, err := a.str("session_id")
	if err != nil {
		return nil, err
	}
	limit, err := a.limit()
	if err != nil {
		return nil, err
	}
	return getConversations{sessionID: sessionID, limit: limit}, nil
}

func (getConversations) tool() Tool { return ToolGetConversations }

func (c getConversations) statement(db.Dialect) db.Statement {
	b := newSelect("SELECT * FROM conversations")
	if c.sessionID != "" {
		b.where("session_id = ?", c.sessionID)
	}
	b.orderBy("timestamp DESC")
	b.limit(c.limit)
	return b.build()
}

func (getConversations) format(res *db.Result) (string, error) {
	return formatJSON(res)
}

type addKnowledge struct {
	topic   string
	content string
	source  interface{}
	tags    interface{}
}

func parseAddKnowledge(a arguments) (invocation, error) {
	topic, hasTopic, err := a.str("topic")
	if err != nil {
		return nil, err
	}
	content, hasContent, err := a.str("content")
	if err != nil {
		return nil, err
	}
	if !hasTopic || !hasContent {
		return nil, validationError(a.tool, "topic and content are required")
	}

	inv := addKnowledge{topic: topic, content: content}
	if inv.source, err = a.nullableStr("source"); err != nil {
		return nil, err
	}
	if inv.tags, err = a.nullableStr("tags"); err != nil {
		return nil, err
	}
	return inv, nil
}

func (addKnowledge) tool() Tool { return ToolAddKnowledge }

func (c addKnowledge) statement(d db.Dialect) db.Statement {
	return db.Statement{
		SQL:  insertSQL(d, "INSERT INTO knowledge_base (topic, content, source, tags) VALUES (?, ?, ?, ?)"),
		Args: []interface{}{c.topic, c.content, c.source, c.tags},
	}
}

func (addKnowledge) format(res *db.Result) (string, error) {
	return formatInserted("Knowledge", res)
}

type searchKnowledge struct {
	query string
	tags  string
	limit int64
}

func parseSearchKnowledge(a arguments) (invocation, error) {
	query, ok, err := a.str("query")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, validationError(a.tool, "query is required")
	}
	tags, _, err := a.str("tags")
	if err != nil {
		return nil, err
	}
	limit, err := a.limit()
	if err != nil {
		return nil, err
	}
	return searchKnowledge{query: query, tags: tags, limit: limit}, nil
}

func (searchKnowledge) tool() Tool { return ToolSearchKnowledge }

func (c searchKnowledge) statement(db.Dialect) db.Statement {
	pattern := "%" + c.query + "%"
	b := newSelect("SELECT * FROM knowledge_base")
	b.where("topic LIKE ? OR content LIKE ?", pattern, pattern)
	if c.tags != "" {
		b.where("tags LIKE ?", "%"+c.tags+"%")
	}
	b.orderBy("priority DESC, created_at DESC")
	b.limit(c.limit)
	return b.build()
}

func (searchKnowledge) format(res *db.Result) (string, error) {
	return formatJSON(res)
}

// defaultTaskPriority matches the column default of the tasks table
const defaultTaskPriority = 1

type addTask struct {
	title       string
	description interface{}
	priority    int64
	context     interface{}
}

func parseAddTask(a arguments) (invocation, error) {
	title, ok, err := a.str("title")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, validationError(a.tool, "title is required")
	}

	inv := addTask{title: title, priority: defaultTaskPriority}
	if inv.description, err = a.nullableStr("description"); err != nil {
		return nil, err
	}
	if inv.context, err = a.nullableStr("context"); err != nil {
		return nil, err
	}
	priority, hasPriority, err := a.integer("priority")
	if err != nil {
		return nil, err
	}
	if hasPriority {
		inv.priority = priority
	}
	return inv, nil
}

func (addTask) tool() Tool { return ToolAddTask }

func (c addTask) statement(d db.Dialect) db.Statement {
	return db.Statement{
		SQL:  insertSQL(d, "INSERT INTO tasks (title, description, priority, context) VALUES (?, ?, ?, ?)"),
		Args: []interface{}{c.title, c.description, c.priority, c.context},
	}
}

func (addTask) format(res *db.Result) (string, error) {
	return formatInserted("Task", res)
}

type getTasks struct {
	status string
	limit  int64
}

func parseGetTasks(a arguments) (invocation, error) {
	status, _, err := a.str("status")
	if err != nil {
		return nil, err
	}
	limit, err := a.limit()
	if err != nil {
		return nil, err
	}
	return getTasks{status: status, limit: limit}, nil
}

func (getTasks) tool() Tool { return ToolGetTasks }

func (c getTasks) statement(db.Dialect) db.Statement {
	b := newSelect("SELECT * FROM tasks")
	if c.status != "" {
		b.where("status = ?", c.status)
	}
	b.orderBy("priority DESC, created_at DESC")
	b.limit(c.limit)
	return b.build()
}

func (getTasks) format(res *db.Result) (string, error) {
	return formatJSON(res)
}

// insertSQL asks for the new id explicitly on engines without last-insert-id
func insertSQL(d db.Dialect, query string) string {
	if d.InsertReturningID() {
		return query + " RETURNING id"
	}
	return query
}
