// Package grouper assembles collected TV episode items into the
// show -> season -> episode tree used by the digest.
//
// Shows are ordered by most recent episode activity (newest first, name
// as tiebreak), seasons ascending, episodes ascending by number.
// Episodes the server reported without usable season or episode numbers
// land in a sentinel season ordered after all known seasons.
package grouper
