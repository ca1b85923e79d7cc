/*
Package secret encrypts and decrypts credential secrets under a passphrase.


Ciphers

Two Cipher implementations are provided.

OpenSSL produces the salted OpenSSL "enc" format (AES-256-CBC, key and IV
derived from the passphrase with EVP_BytesToKey over MD5). It is kept for
compatibility with data written by earlier versions. It does not authenticate
the ciphertext: decrypting with the wrong passphrase usually fails on padding
or UTF-8 validation, but may return garbage.

Sealed uses AES-256-GCM with a key derived by Argon2id from the passphrase and
a random per-record salt. The Argon2id parameters are stored in each record.
Sealed transparently reads OpenSSL records.


Security

The passphrase is the only key material. Nothing here wipes key material from
memory.
*/
package secret
