package codegen

import (
	"fmt"
	"strings"
)

var (
	doubleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	singleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)
)

func renderParams(params []param, format func(key, value string) string) string {
	lines := make([]string, len(params))
	for i, p := range params {
		lines[i] = format(p.Key, p.Value)
	}
	return strings.Join(lines, "\n")
}

func generateJava(flowName string, hashType HashType, params []param) string {
	paramsStr := renderParams(params, func(key, value string) string {
		return fmt.Sprintf(`        params.put("%s", "%s");`, key, doubleQuoteEscaper.Replace(value))
	})

	return fmt.Sprintf(`import java.security.MessageDigest;
import java.util.*;

/**
 * PayU Integration - %[1]s Flow
 * Generated by PayU Payment Hub
 * Hash Type: %[2]s
 */
public class PayUIntegration {

    private static final String MERCHANT_KEY = "YOUR_MERCHANT_KEY";
    private static final String MERCHANT_SALT = "YOUR_MERCHANT_SALT";
    private static final String PAYU_URL = "https://test.payu.in/_payment";

    public static String generateTransactionId() {
        return "TXN" + System.currentTimeMillis() + (int)(Math.random() * 10000);
    }

    public static String generateHash(Map<String, String> params) throws Exception {
        String hashString = MERCHANT_KEY + "|" +
                           params.get("txnid") + "|" +
                           params.get("amount") + "|" +
                           params.get("productinfo") + "|" +
                           params.get("firstname") + "|" +
                           params.get("email") + "|" +
                           params.getOrDefault("udf1", "") + "|" +
                           params.getOrDefault("udf2", "") + "|" +
                           params.getOrDefault("udf3", "") + "|" +
                           params.getOrDefault("udf4", "") + "|" +
                           params.getOrDefault("udf5", "") + "||||||" +
                           MERCHANT_SALT;

        MessageDigest md = MessageDigest.getInstance("SHA-512");
        byte[] hash = md.digest(hashString.getBytes("UTF-8"));

        StringBuilder hexString = new StringBuilder();
        for (byte b : hash) {
            String hex = Integer.toHexString(0xff & b);
            if (hex.length() == 1) hexString.append('0');
            hexString.append(hex);
        }
        return hexString.toString();
    }

    public static void main(String[] args) {
        try {
            Map<String, String> params = new LinkedHashMap<>();
            params.put("key", MERCHANT_KEY);
            params.put("txnid", generateTransactionId());
%[3]s

            String hash = generateHash(params);
            params.put("hash", hash);

            System.out.println("=== PayU %[1]s Payment ===");
            System.out.println("Transaction ID: " + params.get("txnid"));
            System.out.println("Hash: " + hash);
            System.out.println("\nSubmit to: " + PAYU_URL);
        } catch (Exception e) {
            e.printStackTrace();
        }
    }
}`, flowName, hashType, paramsStr)
}

func generatePHP(flowName string, hashType HashType, params []param) string {
	paramsStr := renderParams(params, func(key, value string) string {
		return fmt.Sprintf(`        '%s' => '%s',`, key, singleQuoteEscaper.Replace(value))
	})

	return fmt.Sprintf(`<?php
/**
 * PayU Integration - %[1]s Flow
 * Generated by PayU Payment Hub
 * Hash Type: %[2]s
 */

define('MERCHANT_KEY', 'YOUR_MERCHANT_KEY');
define('MERCHANT_SALT', 'YOUR_MERCHANT_SALT');
define('PAYU_URL', 'https://test.payu.in/_payment');

function generateTransactionId() {
    return 'TXN' . round(microtime(true) * 1000) . rand(1000, 9999);
}

function generateHash($params) {
    $hashString = MERCHANT_KEY . '|' .
                  $params['txnid'] . '|' .
                  $params['amount'] . '|' .
                  $params['productinfo'] . '|' .
                  $params['firstname'] . '|' .
                  $params['email'] . '|' .
                  ($params['udf1'] ?? '') . '|' .
                  ($params['udf2'] ?? '') . '|' .
                  ($params['udf3'] ?? '') . '|' .
                  ($params['udf4'] ?? '') . '|' .
                  ($params['udf5'] ?? '') . '||||||' .
                  MERCHANT_SALT;

    return hash('sha512', $hashString);
}

$params = [
    'key' => MERCHANT_KEY,
    'txnid' => generateTransactionId(),
%[3]s
];

$hash = generateHash($params);
$params['hash'] = $hash;

echo "=== PayU %[1]s Payment ===\n";
echo "Transaction ID: " . $params['txnid'] . "\n";
echo "Hash: " . $hash . "\n";
echo "\nSubmit to: " . PAYU_URL . "\n";
?>`, flowName, hashType, paramsStr)
}

func generatePython(flowName string, hashType HashType, params []param) string {
	paramsStr := renderParams(params, func(key, value string) string {
		return fmt.Sprintf(`        '%s': '%s',`, key, singleQuoteEscaper.Replace(value))
	})

	return fmt.Sprintf(`#!/usr/bin/env python3
"""
PayU Integration - %[1]s Flow
Generated by PayU Payment Hub
Hash Type: %[2]s
"""

import hashlib
import time
import random

MERCHANT_KEY = 'YOUR_MERCHANT_KEY'
MERCHANT_SALT = 'YOUR_MERCHANT_SALT'
PAYU_URL = 'https://test.payu.in/_payment'

def generate_transaction_id():
    timestamp = int(time.time() * 1000)
    random_num = random.randint(1000, 9999)
    return f'TXN{timestamp}{random_num}'

def generate_hash(params):
    hash_string = (
        f"{MERCHANT_KEY}|"
        f"{params['txnid']}|"
        f"{params['amount']}|"
        f"{params['productinfo']}|"
        f"{params['firstname']}|"
        f"{params['email']}|"
        f"{params.get('udf1', '')}|"
        f"{params.get('udf2', '')}|"
        f"{params.get('udf3', '')}|"
        f"{params.get('udf4', '')}|"
        f"{params.get('udf5', '')}||||||"
        f"{MERCHANT_SALT}"
    )
    return hashlib.sha512(hash_string.encode('utf-8')).hexdigest()

if __name__ == '__main__':
    params = {
        'key': MERCHANT_KEY,
        'txnid': generate_transaction_id(),
%[3]s
    }

    hash_value = generate_hash(params)
    params['hash'] = hash_value

    print("=== PayU %[1]s Payment ===")
    print(f"Transaction ID: {params['txnid']}")
    print(f"Hash: {hash_value}")
    print(f"\nSubmit to: {PAYU_URL}")`, flowName, hashType, paramsStr)
}

func generateNodeJS(flowName string, hashType HashType, params []param) string {
	paramsStr := renderParams(params, func(key, value string) string {
		return fmt.Sprintf(`        %s: '%s',`, key, singleQuoteEscaper.Replace(value))
	})

	return fmt.Sprintf(`/**
 * PayU Integration - %[1]s Flow
 * Generated by PayU Payment Hub
 * Hash Type: %[2]s
 */

const crypto = require('crypto');

const MERCHANT_KEY = 'YOUR_MERCHANT_KEY';
const MERCHANT_SALT = 'YOUR_MERCHANT_SALT';
const PAYU_URL = 'https://test.payu.in/_payment';

function generateTransactionId() {
    return 'TXN' + Date.now() + Math.floor(Math.random() * 10000);
}

function generateHash(params) {
    const hashString = [
        MERCHANT_KEY,
        params.txnid,
        params.amount,
        params.productinfo,
        params.firstname,
        params.email,
        params.udf1 || '',
        params.udf2 || '',
        params.udf3 || '',
        params.udf4 || '',
        params.udf5 || '',
        '', '', '', '', '', '',
        MERCHANT_SALT
    ].join('|');

    return crypto.createHash('sha512').update(hashString).digest('hex');
}

const params = {
    key: MERCHANT_KEY,
    txnid: generateTransactionId(),
%[3]s
};

const hash = generateHash(params);
params.hash = hash;

console.log('=== PayU %[1]s Payment ===');
console.log('Transaction ID:', params.txnid);
console.log('Hash:', hash);
console.log('\nSubmit to:', PAYU_URL);`, flowName, hashType, paramsStr)
}
