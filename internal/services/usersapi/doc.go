// Package usersapi serves json-server compatible users and stores collections
// backed by SQLite. Each store references its owner through user_id and each
// user lists the ids of its stores.
//
// Lists honor the json-server query conventions (_sort, _order, _start, _end,
// _page, _limit, q and exact field filters) and report the unpaginated size
// in the X-Total-Count header, so the panel can inspect the service without
// an envelope configuration. Passwords are accepted on writes, stored as
// bcrypt hashes and never returned.
package usersapi
