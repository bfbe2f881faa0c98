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

// Remote method names.
const (
	MethodUserList        = "user.list"
	MethodUserGet         = "user.get"
	MethodUserSetNick     = "user.set_nick"
	MethodUserSetUsername = "user.set_username"
	MethodUserSetRealname = "user.set_realname"
	MethodUserSetVhost    = "user.set_vhost"
	MethodUserSetMode     = "user.set_mode"
	MethodUserSetSnomask  = "user.set_snomask"
	MethodUserSetOper     = "user.set_oper"
	MethodUserJoin        = "user.join"
	MethodUserPart        = "user.part"
	MethodUserKill        = "user.kill"
	MethodUserQuit        = "user.quit"

	MethodChannelList     = "channel.list"
	MethodChannelGet      = "channel.get"
	MethodChannelSetMode  = "channel.set_mode"
	MethodChannelSetTopic = "channel.set_topic"
	MethodChannelKick     = "channel.kick"

	MethodServerList       = "server.list"
	MethodServerGet        = "server.get"
	MethodServerRehash     = "server.rehash"
	MethodServerConnect    = "server.connect"
	MethodServerDisconnect = "server.disconnect"

	MethodServerBanList = "server_ban.list"
	MethodServerBanGet  = "server_ban.get"
	MethodServerBanAdd  = "server_ban.add"
	MethodServerBanDel  = "server_ban.del"

	MethodServerBanExceptionList = "server_ban_exception.list"
	MethodServerBanExceptionGet  = "server_ban_exception.get"
	MethodServerBanExceptionAdd  = "server_ban_exception.add"
	MethodServerBanExceptionDel  = "server_ban_exception.del"

	MethodSpamfilterList = "spamfilter.list"
	MethodSpamfilterGet  = "spamfilter.get"
	MethodSpamfilterAdd  = "spamfilter.add"
	MethodSpamfilterDel  = "spamfilter.del"

	MethodNameBanList = "name_ban.list"
	MethodNameBanGet  = "name_ban.get"
	MethodNameBanAdd  = "name_ban.add"
	MethodNameBanDel  = "name_ban.del"

	MethodRPCSetIssuer = "rpc.set_issuer"
	MethodRPCInfo      = "rpc.info"
	MethodRPCAddTimer  = "rpc.add_timer"
	MethodRPCDelTimer  = "rpc.del_timer"

	MethodStatsGet = "stats.get"

	MethodLogSend        = "log.send"
	MethodLogList        = "log.list"
	MethodLogSubscribe   = "log.subscribe"
	MethodLogUnsubscribe = "log.unsubscribe"

	MethodWhowasGet = "whowas.get"
)

// Server ban types.
const (
	BanTypeGline = "gline"
	BanTypeKline = "kline"
	BanTypeZline = "zline"
	BanTypeQline = "qline"
)

// Spamfilter actions.
const (
	SpamfilterBlock = "block"
	SpamfilterKill  = "kill"
	SpamfilterGline = "gline"
	SpamfilterWarn  = "warn"
)

// DefaultDetailLevel is the object_detail_level sent by list and get
// operations when the caller does not choose one.
const DefaultDetailLevel = 2

// Params carries optional parameters that are merged into a request.
// Keys in Params take precedence over positional arguments of the same name.
type Params map[string]any

func merge(base map[string]any, extra Params) map[string]any {
	for k, v := range extra {
		base[k] = v
	}
	return base
}
