// Package scaffold assembles admin list pages from a data provider and a set
// of managed resources.
//
// An Admin is cheap to build and is expected to be created for every render;
// it holds no state of its own beyond the provider it was given.
package scaffold
