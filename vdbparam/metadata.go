package vdbparam

// Well-known metadata keys used in the Arrow IPC encoding of requests and
// schema descriptions. Request-level keys appear in the schema's custom
// metadata; MetaDataType appears on each column.
const (
	MetaCollection      = "vdb.collection"
	MetaPartition       = "vdb.partition"
	MetaMsgType         = "vdb.msg_type"
	MetaNumRows         = "vdb.num_rows"
	MetaRequestID       = "vdb.request_id"
	MetaProtocolVersion = "vdb.protocol_version"
	MetaDataType        = "vdb.data_type"
	MetaDescribeVersion = "vdb.describe_version"

	ProtocolVersion = "1"
	DescribeVersion = "1"
)
