// Package security holds the TLS settings shared by the fetch client and
// the admin server.
//
//	tls:
//	  ca_file: /etc/craft/ca.pem
//	  cert_file: /etc/craft/cert.pem
//	  key_file: /etc/craft/key.pem
//
// On the client side the CA verifies the remote server and the key pair is
// presented for mTLS. On the server side the key pair is served and the CA,
// when set, requires and verifies client certificates.
package security
