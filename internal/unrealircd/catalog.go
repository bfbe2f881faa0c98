// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package unrealircd

import (
	"slices"
	"sort"
	"strings"
	"sync"
)

// ParamType is the declared type of an operation parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamBoolean ParamType = "boolean"
	ParamObject  ParamType = "object"
	// ParamStringList accepts a list or a comma-separated string.
	ParamStringList ParamType = "string_list"
)

// Operation tags.
const (
	TagRead        = "read"
	TagWrite       = "write"
	TagDestructive = "destructive"
)

// ParamSpec describes one request parameter.
type ParamSpec struct {
	// Name is the parameter name on the wire.
	Name        string
	Type        ParamType
	Required    bool
	Default     any
	OmitEmpty   bool
	Description string
	Enum        []string
}

func required(name string, typ ParamType, desc string) ParamSpec {
	return ParamSpec{Name: name, Type: typ, Required: true, Description: desc}
}

func optional(name string, typ ParamType, desc string) ParamSpec {
	return ParamSpec{Name: name, Type: typ, OmitEmpty: true, Description: desc}
}

func (p ParamSpec) withDefault(v any) ParamSpec {
	p.Default = v
	p.OmitEmpty = false
	return p
}

func (p ParamSpec) oneOf(values ...string) ParamSpec {
	p.Enum = values
	return p
}

// OperationSpec describes one remote method.
type OperationSpec struct {
	Method      string
	Resource    string
	Action      string
	Description string
	Params      []ParamSpec

	// OpenParams allows inputs not listed in Params to be passed through
	// unchanged, as the server accepts further optional fields.
	OpenParams bool

	Tags []string
}

// ToolName is the resource and action joined by an underscore, e.g.
// "server_ban_add".
func (s *OperationSpec) ToolName() string {
	return s.Resource + "_" + s.Action
}

// HasTag reports whether the operation carries tag.
func (s *OperationSpec) HasTag(tag string) bool {
	return slices.Contains(s.Tags, tag)
}

// Param returns the named parameter spec.
func (s *OperationSpec) Param(name string) (ParamSpec, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

var (
	detailLevel = ParamSpec{
		Name:        "object_detail_level",
		Type:        ParamInteger,
		Default:     DefaultDetailLevel,
		Description: "Amount of detail in returned objects (0-4)",
	}
	banTypes = []string{BanTypeGline, BanTypeKline, BanTypeZline, BanTypeQline}
	logLevels = []string{"debug", "info", "warn", "error", "fatal"}
)

func op(method, desc string, tags []string, params ...ParamSpec) OperationSpec {
	resource, action, _ := strings.Cut(method, ".")
	return OperationSpec{
		Method:      method,
		Resource:    resource,
		Action:      action,
		Description: desc,
		Params:      params,
		Tags:        tags,
	}
}

func openParams(s OperationSpec) OperationSpec {
	s.OpenParams = true
	return s
}

var (
	read        = []string{TagRead}
	write       = []string{TagWrite}
	destructive = []string{TagWrite, TagDestructive}
)

var catalog = []OperationSpec{
	openParams(op(MethodUserList, "List users connected to the network", read, detailLevel)),
	openParams(op(MethodUserGet, "Get details of a user", read,
		required("nick", ParamString, "Nick name or UID"), detailLevel)),
	op(MethodUserSetNick, "Change the nick name of a user", write,
		required("nick", ParamString, "Current nick name or UID"),
		required("newnick", ParamString, "New nick name"),
		ParamSpec{Name: "force", Type: ParamBoolean, Description: "Bypass nick restrictions"}.withDefault(false)),
	op(MethodUserSetUsername, "Change the username (ident) of a user", write,
		required("nick", ParamString, "Nick name or UID"),
		required("username", ParamString, "New username")),
	op(MethodUserSetRealname, "Change the realname (gecos) of a user", write,
		required("nick", ParamString, "Nick name or UID"),
		required("realname", ParamString, "New realname")),
	op(MethodUserSetVhost, "Change the virtual host of a user", write,
		required("nick", ParamString, "Nick name or UID"),
		required("vhost", ParamString, "New virtual host")),
	op(MethodUserSetMode, "Change the user modes of a user", write,
		required("nick", ParamString, "Nick name or UID"),
		required("modes", ParamString, "Mode change, e.g. +i-x"),
		ParamSpec{Name: "hidden", Type: ParamBoolean, Description: "Do not notify the user"}.withDefault(false)),
	op(MethodUserSetSnomask, "Change the server notice mask of a user", write,
		required("nick", ParamString, "Nick name or UID"),
		required("snomask", ParamString, "Snomask change, e.g. +cF"),
		ParamSpec{Name: "hidden", Type: ParamBoolean, Description: "Do not notify the user"}.withDefault(false)),
	openParams(op(MethodUserSetOper, "Make a user an IRC operator", write,
		required("nick", ParamString, "Nick name or UID"),
		required("oper_account", ParamString, "Oper account name"),
		required("oper_class", ParamString, "Oper class"),
		optional("class", ParamString, "Connection class"),
		optional("modes", ParamString, "User modes to set"),
		optional("snomask", ParamString, "Server notice mask to set"),
		optional("vhost", ParamString, "Virtual host to set"))),
	op(MethodUserJoin, "Force a user to join a channel", write,
		required("nick", ParamString, "Nick name or UID"),
		required("channel", ParamString, "Channel name"),
		optional("key", ParamString, "Channel key"),
		ParamSpec{Name: "force", Type: ParamBoolean, Description: "Bypass bans, limits and keys"}.withDefault(false)),
	op(MethodUserPart, "Force a user to leave a channel", write,
		required("nick", ParamString, "Nick name or UID"),
		required("channel", ParamString, "Channel name"),
		ParamSpec{Name: "force", Type: ParamBoolean, Description: "Part even if the user is not allowed to"}.withDefault(false)),
	op(MethodUserKill, "Kill a user, showing a kill message", destructive,
		required("nick", ParamString, "Nick name or UID"),
		required("reason", ParamString, "Kill reason")),
	op(MethodUserQuit, "Disconnect a user as if they quit", destructive,
		required("nick", ParamString, "Nick name or UID"),
		required("reason", ParamString, "Quit reason")),

	openParams(op(MethodChannelList, "List channels", read, detailLevel)),
	openParams(op(MethodChannelGet, "Get details of a channel", read,
		required("channel", ParamString, "Channel name"), detailLevel)),
	op(MethodChannelSetMode, "Set channel modes", write,
		required("channel", ParamString, "Channel name"),
		required("modes", ParamString, "Mode change, e.g. +l"),
		ParamSpec{Name: "parameters", Type: ParamString, Description: "Mode parameters, space separated"}.withDefault("")),
	op(MethodChannelSetTopic, "Set the channel topic", write,
		required("channel", ParamString, "Channel name"),
		required("topic", ParamString, "New topic"),
		optional("set_by", ParamString, "Who set the topic"),
		optional("set_at", ParamString, "When the topic was set (ISO 8601)")),
	op(MethodChannelKick, "Kick a user from a channel", destructive,
		required("channel", ParamString, "Channel name"),
		required("nick", ParamString, "Nick name or UID"),
		required("reason", ParamString, "Kick reason")),

	openParams(op(MethodServerList, "List linked servers", read, detailLevel)),
	openParams(op(MethodServerGet, "Get details of a server", read,
		optional("name", ParamString, "Server name, empty for the server handling the request"), detailLevel)),
	op(MethodServerRehash, "Rehash the server handling the request", write),
	op(MethodServerConnect, "Link to a server defined in a link block", write,
		required("server", ParamString, "Server name")),
	op(MethodServerDisconnect, "Unlink a server (squit)", destructive,
		required("server", ParamString, "Server name"),
		optional("reason", ParamString, "Reason")),

	openParams(op(MethodServerBanList, "List server bans", read, detailLevel)),
	op(MethodServerBanGet, "Get a server ban", read,
		required("name", ParamString, "Ban mask"),
		required("type", ParamString, "Ban type").oneOf(banTypes...)),
	openParams(op(MethodServerBanAdd, "Add a server ban", write,
		required("name", ParamString, "Ban mask"),
		required("type", ParamString, "Ban type").oneOf(banTypes...),
		optional("reason", ParamString, "Ban reason"),
		optional("duration_string", ParamString, "Duration, e.g. 1d or 0 for permanent"),
		optional("set_by", ParamString, "Who set the ban"))),
	op(MethodServerBanDel, "Remove a server ban", destructive,
		required("name", ParamString, "Ban mask"),
		required("type", ParamString, "Ban type").oneOf(banTypes...)),

	openParams(op(MethodServerBanExceptionList, "List server ban exceptions", read, detailLevel)),
	op(MethodServerBanExceptionGet, "Get a server ban exception", read,
		required("name", ParamString, "Exception mask"),
		required("type", ParamString, "Ban type").oneOf(banTypes...)),
	openParams(op(MethodServerBanExceptionAdd, "Add a server ban exception", write,
		required("name", ParamString, "Exception mask"),
		required("type", ParamString, "Ban type").oneOf(banTypes...),
		optional("exception_types", ParamString, "Exception type letters"),
		optional("reason", ParamString, "Reason"),
		optional("duration_string", ParamString, "Duration, e.g. 1d or 0 for permanent"),
		optional("set_by", ParamString, "Who set the exception"))),
	op(MethodServerBanExceptionDel, "Remove a server ban exception", destructive,
		required("name", ParamString, "Exception mask"),
		required("type", ParamString, "Ban type").oneOf(banTypes...)),

	openParams(op(MethodSpamfilterList, "List spamfilters", read)),
	op(MethodSpamfilterGet, "Get a spamfilter", read,
		required("id", ParamString, "Spamfilter id")),
	openParams(op(MethodSpamfilterAdd, "Add a spamfilter", write,
		required("match", ParamString, "Match expression"),
		required("target", ParamString, "Targets, e.g. cpnN"),
		required("action", ParamString, "Action taken on match").oneOf(SpamfilterBlock, SpamfilterKill, SpamfilterGline, SpamfilterWarn),
		optional("match_type", ParamString, "Match type, e.g. simple or regex"),
		optional("reason", ParamString, "Reason"),
		optional("ban_duration", ParamString, "Duration of bans placed by the filter"),
		optional("set_by", ParamString, "Who set the filter"))),
	op(MethodSpamfilterDel, "Remove a spamfilter", destructive,
		required("id", ParamString, "Spamfilter id")),

	openParams(op(MethodNameBanList, "List name bans (Q-Lines)", read, detailLevel)),
	op(MethodNameBanGet, "Get a name ban", read,
		required("name", ParamString, "Nick or channel mask")),
	openParams(op(MethodNameBanAdd, "Ban a nick or channel name", write,
		required("name", ParamString, "Nick or channel mask"),
		optional("reason", ParamString, "Reason"),
		optional("duration_string", ParamString, "Duration, e.g. 1d or 0 for permanent"),
		optional("set_by", ParamString, "Who set the ban"))),
	op(MethodNameBanDel, "Remove a name ban", destructive,
		required("name", ParamString, "Nick or channel mask")),

	op(MethodRPCSetIssuer, "Set the name shown as the issuer of changes", write,
		required("issuer", ParamString, "Issuer name")),
	op(MethodRPCInfo, "List available JSON-RPC methods", read),
	op(MethodRPCAddTimer, "Run a method periodically on the server", write,
		required("every", ParamInteger, "Interval in milliseconds"),
		required("id", ParamString, "Timer id"),
		required("method", ParamString, "Method to call"),
		ParamSpec{Name: "params", Type: ParamObject, Description: "Parameters for the method"}.withDefault(map[string]any{})),
	op(MethodRPCDelTimer, "Remove a timer", write,
		required("id", ParamString, "Timer id")),

	openParams(op(MethodStatsGet, "Get network statistics", read,
		ParamSpec{Name: "type", Type: ParamString, Description: "Statistics category"}.
			withDefault("all").oneOf("all", "general", "users", "channels", "network"))),

	op(MethodLogSend, "Write a message to the server log", write,
		required("level", ParamString, "Log level").oneOf(logLevels...),
		required("subsystem", ParamString, "Subsystem"),
		required("event_id", ParamString, "Event id"),
		required("msg", ParamString, "Message")),
	openParams(op(MethodLogList, "List recent log entries", read,
		optional("sources", ParamStringList, "Log sources, comma separated"))),
	openParams(op(MethodLogSubscribe, "Subscribe to log events", read,
		ParamSpec{Name: "log_level", Type: ParamString, Description: "Minimum log level"}.withDefault("info").oneOf(logLevels...),
		optional("sources", ParamStringList, "Log sources, comma separated"))),
	op(MethodLogUnsubscribe, "Unsubscribe from log events", read),

	openParams(op(MethodWhowasGet, "Get WHOWAS history for a nick", read,
		required("nick", ParamString, "Nick name"),
		optional("object_detail_level", ParamInteger, "Amount of detail in returned objects"))),
}

var (
	catalogIndexOnce sync.Once
	catalogIndex     map[string]*OperationSpec
)

func index() map[string]*OperationSpec {
	catalogIndexOnce.Do(func() {
		catalogIndex = make(map[string]*OperationSpec, len(catalog)*2)
		for i := range catalog {
			s := &catalog[i]
			catalogIndex[s.Method] = s
			catalogIndex[s.ToolName()] = s
		}
	})
	return catalogIndex
}

// Catalog returns every known operation, in declaration order.
func Catalog() []OperationSpec {
	return slices.Clone(catalog)
}

// Lookup finds an operation by method ("user.get") or tool name
// ("user_get").
func Lookup(name string) (*OperationSpec, bool) {
	s, ok := index()[name]
	if !ok {
		return nil, false
	}
	spec := *s
	return &spec, true
}

// Resources returns the distinct resource names, sorted.
func Resources() []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range catalog {
		if !seen[s.Resource] {
			seen[s.Resource] = true
			out = append(out, s.Resource)
		}
	}
	sort.Strings(out)
	return out
}
