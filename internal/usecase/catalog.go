package usecase

import (
	"github.com/FreePeak/turso-mcp-server/pkg/tools"
)

// DefaultToolPrefix is prepended to every tool name unless configured otherwise
const DefaultToolPrefix = "turso_"

// Tool is the unprefixed name of a catalog entry
type Tool string

const (
	ToolExecuteQuery         Tool = "execute_query"
	ToolExecuteReadOnlyQuery Tool = "execute_read_only_query"
	ToolListTables           Tool = "list_tables"
	ToolDescribeTable        Tool = "describe_table"
	ToolCreateTable          Tool = "create_table"
	ToolAddConversation      Tool = "add_conversation"
	ToolGetConversations     Tool = "get_conversations"
	ToolAddKnowledge         Tool = "add_knowledge"
	ToolSearchKnowledge      Tool = "search_knowledge"
	ToolAddTask              Tool = "add_task"
	ToolGetTasks             Tool = "get_tasks"
)

// AllTools lists the catalog in the order it is served
var AllTools = []Tool{
	ToolExecuteQuery,
	ToolExecuteReadOnlyQuery,
	ToolListTables,
	ToolDescribeTable,
	ToolCreateTable,
	ToolAddConversation,
	ToolGetConversations,
	ToolAddKnowledge,
	ToolSearchKnowledge,
	ToolAddTask,
	ToolGetTasks,
}

var limitParam = tools.Param{Name: "limit", Type: tools.TypeNumber, Description: "Maximum number of rows to return"}

func describe(t Tool, name string) tools.Descriptor {
	switch t {
	case ToolExecuteQuery:
		return tools.NewDescriptor(name, "Execute a SQL query on the Turso database",
			tools.Param{Name: "query", Type: tools.TypeString, Description: "SQL query to execute", Required: true},
			tools.Param{Name: "params", Type: tools.TypeArray, Description: "Query parameters", Items: tools.TypeString},
		)
	case ToolExecuteReadOnlyQuery:
		return tools.NewDescriptor(name, "Execute a read-only SQL query (SELECT, PRAGMA, EXPLAIN or WITH) on the Turso database",
			tools.Param{Name: "query", Type: tools.TypeString, Description: "Read-only SQL query to execute", Required: true},
			tools.Param{Name: "params", Type: tools.TypeArray, Description: "Query parameters", Items: tools.TypeString},
		)
	case ToolListTables:
		return tools.NewDescriptor(name, "List all tables in the database")
	case ToolDescribeTable:
		return tools.NewDescriptor(name, "Describe the columns of a table",
			tools.Param{Name: "table", Type: tools.TypeString, Description: "Name of the table to describe", Required: true},
		)
	case ToolCreateTable:
		return tools.NewDescriptor(name, "Create a new table in the database",
			tools.Param{Name: "tableName", Type: tools.TypeString, Description: "Name of the table to create", Required: true},
			tools.Param{Name: "schema", Type: tools.TypeString, Description: "SQL schema definition", Required: true},
		)
	case ToolAddConversation:
		return tools.NewDescriptor(name, "Store a conversation turn in memory",
			tools.Param{Name: "session_id", Type: tools.TypeString, Description: "Conversation session identifier", Required: true},
			tools.Param{Name: "user_id", Type: tools.TypeString, Description: "User identifier"},
			tools.Param{Name: "message", Type: tools.TypeString, Description: "User message", Required: true},
			tools.Param{Name: "response", Type: tools.TypeString, Description: "Assistant response"},
			tools.Param{Name: "context", Type: tools.TypeString, Description: "Additional context"},
		)
	case ToolGetConversations:
		return tools.NewDescriptor(name, "Get stored conversations, newest first",
			tools.Param{Name: "session_id", Type: tools.TypeString, Description: "Only return this session"},
			limitParam,
		)
	case ToolAddKnowledge:
		return tools.NewDescriptor(name, "Add an entry to the knowledge base",
			tools.Param{Name: "topic", Type: tools.TypeString, Description: "Knowledge topic", Required: true},
			tools.Param{Name: "content", Type: tools.TypeString, Description: "Knowledge content", Required: true},
			tools.Param{Name: "source", Type: tools.TypeString, Description: "Where the knowledge came from"},
			tools.Param{Name: "tags", Type: tools.TypeString, Description: "Comma separated tags"},
		)
	case ToolSearchKnowledge:
		return tools.NewDescriptor(name, "Search the knowledge base by topic or content",
			tools.Param{Name: "query", Type: tools.TypeString, Description: "Text to search for", Required: true},
			tools.Param{Name: "tags", Type: tools.TypeString, Description: "Only match entries with these tags"},
			limitParam,
		)
	case ToolAddTask:
		return tools.NewDescriptor(name, "Add a task",
			tools.Param{Name: "title", Type: tools.TypeString, Description: "Task title", Required: true},
			tools.Param{Name: "description", Type: tools.TypeString, Description: "Task description"},
			tools.Param{Name: "priority", Type: tools.TypeNumber, Description: "Task priority (1-5), defaults to 1"},
			tools.Param{Name: "context", Type: tools.TypeString, Description: "Additional context"},
		)
	case ToolGetTasks:
		return tools.NewDescriptor(name, "Get tasks ordered by priority",
			tools.Param{Name: "status", Type: tools.TypeString, Description: "Only return tasks with this status (pending, completed, ...)"},
			limitParam,
		)
	default:
		return tools.Descriptor{}
	}
}

// NewCatalog builds the tool catalog with every name carrying prefix
func NewCatalog(prefix string) (*tools.Catalog, error) {
	descriptors := make([]tools.Descriptor, 0, len(AllTools))
	for _, t := range AllTools {
		descriptors = append(descriptors, describe(t, prefix+string(t)))
	}
	return tools.NewCatalog(descriptors...)
}
